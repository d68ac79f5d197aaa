package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"bookshelf/internal/books"
	"bookshelf/internal/models"
)

// HTTPServer serves the bookshelf API
type HTTPServer struct {
	store       *books.Store
	logger      *zap.Logger
	corsOrigins []string
}

// NewHTTPServer creates a new HTTP server for the book store
func NewHTTPServer(store *books.Store, logger *zap.Logger, corsOrigins []string) *HTTPServer {
	return &HTTPServer{
		store:       store,
		logger:      logger,
		corsOrigins: corsOrigins,
	}
}

// RegisterRoutes registers the API routes on the provided router
func (hs *HTTPServer) RegisterRoutes(r *mux.Router) {
	// Health check endpoint
	r.HandleFunc("/health", hs.handleHealth).Methods(http.MethodGet)

	// Book endpoints
	r.HandleFunc("/books", hs.handleCreateBook).Methods(http.MethodPost)
	r.HandleFunc("/books", hs.handleListBooks).Methods(http.MethodGet)
	r.HandleFunc("/books/{bookId}", hs.handleGetBook).Methods(http.MethodGet)
	r.HandleFunc("/books/{bookId}", hs.handleUpdateBook).Methods(http.MethodPut)
	r.HandleFunc("/books/{bookId}", hs.handleDeleteBook).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hs.fail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hs.fail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
}

// Handler returns the router wrapped in the middleware chain
func (hs *HTTPServer) Handler() http.Handler {
	r := mux.NewRouter()
	hs.RegisterRoutes(r)
	return hs.withMiddleware(r)
}

func (hs *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// decodeBook reads a create/update payload
func decodeBook(r *http.Request) (models.BookInput, error) {
	var in models.BookInput
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&in); err != nil {
		return models.BookInput{}, fmt.Errorf("invalid request body: %w", err)
	}
	// The body must hold exactly one JSON value
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return models.BookInput{}, errors.New("invalid request body: unexpected data after JSON value")
	}
	return in, nil
}

func (hs *HTTPServer) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	in, err := decodeBook(r)
	if err != nil {
		hs.logger.Warn("Failed to decode request body", zap.Error(err))
		hs.fail(w, http.StatusBadRequest, "Failed to add book. Invalid request body")
		return
	}

	id, err := hs.store.Create(r.Context(), in)
	if err != nil {
		hs.writeError(w, r, books.OpCreate, err)
		return
	}

	hs.writeJSON(w, http.StatusCreated, Envelope{
		Status:  statusSuccess,
		Message: "Book added successfully",
		Data:    map[string]string{"bookId": id},
	})
}

func (hs *HTTPServer) handleListBooks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var filter models.ListFilter
	if query.Has("name") {
		name := query.Get("name")
		filter.NameContains = &name
	}
	filter.Reading = models.ParseFilterFlag(query.Get("reading"), query.Has("reading"))
	filter.Finished = models.ParseFilterFlag(query.Get("finished"), query.Has("finished"))

	summaries, err := hs.store.List(r.Context(), filter)
	if err != nil {
		hs.writeError(w, r, books.OpGet, err)
		return
	}

	hs.writeJSON(w, http.StatusOK, Envelope{
		Status: statusSuccess,
		Data:   map[string]interface{}{"books": summaries},
	})
}

func (hs *HTTPServer) handleGetBook(w http.ResponseWriter, r *http.Request) {
	book, err := hs.store.Get(r.Context(), mux.Vars(r)["bookId"])
	if err != nil {
		hs.writeError(w, r, books.OpGet, err)
		return
	}

	hs.writeJSON(w, http.StatusOK, Envelope{
		Status: statusSuccess,
		Data:   map[string]interface{}{"book": book},
	})
}

func (hs *HTTPServer) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	in, err := decodeBook(r)
	if err != nil {
		hs.logger.Warn("Failed to decode request body", zap.Error(err))
		hs.fail(w, http.StatusBadRequest, "Failed to update book. Invalid request body")
		return
	}

	if err := hs.store.Update(r.Context(), mux.Vars(r)["bookId"], in); err != nil {
		hs.writeError(w, r, books.OpUpdate, err)
		return
	}

	hs.writeJSON(w, http.StatusOK, Envelope{
		Status:  statusSuccess,
		Message: "Book updated successfully",
	})
}

func (hs *HTTPServer) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	if err := hs.store.Delete(r.Context(), mux.Vars(r)["bookId"]); err != nil {
		hs.writeError(w, r, books.OpDelete, err)
		return
	}

	hs.writeJSON(w, http.StatusOK, Envelope{
		Status:  statusSuccess,
		Message: "Book deleted successfully",
	})
}
