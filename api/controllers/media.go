package controllers

import (
	"net/http"
	"strings"

	"github.com/lotbridge/lotbridge-backend/api/responses"
	"github.com/lotbridge/lotbridge-backend/api/validators"
	mediasvc "github.com/lotbridge/lotbridge-backend/internal/media"
	"github.com/lotbridge/lotbridge-backend/pkg/enums"
	pkgerrors "github.com/lotbridge/lotbridge-backend/pkg/errors"
	"github.com/lotbridge/lotbridge-backend/pkg/logger"
)

type presignMediaRequest struct {
	Kind      string `json:"kind" validate:"required"`
	MimeType  string `json:"mime_type" validate:"required"`
	FileName  string `json:"file_name" validate:"required"`
	SizeBytes int64  `json:"size_bytes" validate:"required,min=1"`
}

// AdminPresignMedia issues a presigned upload URL for listing media.
func AdminPresignMedia(svc mediasvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		var body presignMediaRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParseMediaKind(strings.TrimSpace(body.Kind))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid media kind"))
			return
		}

		output, err := svc.PresignUpload(r.Context(), mediasvc.PresignInput{
			Kind:      kind,
			MimeType:  body.MimeType,
			FileName:  body.FileName,
			SizeBytes: body.SizeBytes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, output)
	}
}
