package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// ValuesReader fetches a rectangular cell range from a spreadsheet.
type ValuesReader interface {
	Read(ctx context.Context, spreadsheetID, readRange string) ([][]any, error)
}

type apiReader struct {
	svc *sheetsapi.Service
}

// NewReader builds a read-only Sheets client. Credentials resolve the same
// way as the rest of the Google stack: explicit JSON first, then ADC.
func NewReader(ctx context.Context, credentialsJSON string) (ValuesReader, error) {
	opts := []option.ClientOption{option.WithScopes(sheetsapi.SpreadsheetsReadonlyScope)}
	if credentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}
	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("building sheets client: %w", err)
	}
	return &apiReader{svc: svc}, nil
}

func (r *apiReader) Read(ctx context.Context, spreadsheetID, readRange string) ([][]any, error) {
	resp, err := r.svc.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading range %s: %w", readRange, err)
	}
	return resp.Values, nil
}
