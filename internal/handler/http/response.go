package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"flatfile-shop/internal/logger"
	"flatfile-shop/internal/service"
)

const (
	msgProductNotFound = "Producto no encontrado"
	msgCartNotFound    = "Carrito no encontrado"
	msgProductDeleted  = "Producto eliminado"
	msgInvalidJSON     = "JSON inválido"
	msgInvalidType     = "Tipo de dato inválido"
	msgInternal        = "Error interno del servidor"
)

type errorBody struct {
	Error string `json:"error"`
}

type messageBody struct {
	Mensaje string `json:"mensaje"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps a service error onto its HTTP response. Anything that
// is not a known lookup miss is logged and reported as a 500.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: msgProductNotFound})
	case errors.Is(err, service.ErrCartNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: msgCartNotFound})
	default:
		logger.Error(ctx, "Request failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: msgInternal})
	}
}

var errTrailingData = errors.New("unexpected data after JSON body")

// decodeBody decodes an optional JSON body into v. An empty body leaves v
// at its zero value. The body must hold exactly one JSON value.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}

// writeDecodeError reports a rejected request body. Well-formed JSON whose
// fields have the wrong type gets its own message naming the field.
func writeDecodeError(w http.ResponseWriter, err error) {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("%s: %s", msgInvalidType, typeErr.Field)})
		return
	}
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msgInvalidJSON})
}
