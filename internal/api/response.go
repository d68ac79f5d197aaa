package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"bookshelf/internal/books"
)

const (
	statusSuccess = "success"
	statusFail    = "fail"
)

// Envelope is the body of every API response
type Envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// writeJSON encodes body with the given status code
func (hs *HTTPServer) writeJSON(w http.ResponseWriter, code int, body Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		hs.logger.Warn("Failed to encode response", zap.Error(err))
	}
}

func (hs *HTTPServer) fail(w http.ResponseWriter, code int, message string) {
	hs.writeJSON(w, code, Envelope{Status: statusFail, Message: message})
}

var opPrefix = map[books.Op]string{
	books.OpCreate: "Failed to add book",
	books.OpGet:    "Failed to get book",
	books.OpUpdate: "Failed to update book",
	books.OpDelete: "Failed to delete book",
}

var reasonText = map[books.Reason]string{
	books.ReasonMissingName:              "Please fill in the book name",
	books.ReasonReadPageExceedsPageCount: "readPage must not be greater than pageCount",
}

// writeError maps a store error for op to a fail response
func (hs *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, op books.Op, err error) {
	var verr *books.ValidationError
	switch {
	case errors.As(err, &verr):
		hs.fail(w, http.StatusBadRequest, opPrefix[verr.Op]+". "+reasonText[verr.Reason])
	case errors.Is(err, books.ErrNotFound):
		if op == books.OpGet {
			hs.fail(w, http.StatusNotFound, "Book not found")
			return
		}
		hs.fail(w, http.StatusNotFound, opPrefix[op]+". Id not found")
	default:
		hs.logger.Error("Request failed",
			zap.Error(err),
			zap.String("op", string(op)),
			zap.String("request_id", RequestID(r.Context())),
		)
		hs.fail(w, http.StatusInternalServerError, opPrefix[op]+". Internal server error")
	}
}
