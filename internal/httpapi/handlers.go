package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"picstash/internal/picstash"
)

// imageJSON is the wire form of an image record.
type imageJSON struct {
	ID         string  `json:"id"`
	Collection string  `json:"collection"`
	Name       string  `json:"name"`
	Extension  string  `json:"extension"`
	MIME       string  `json:"mime"`
	Size       int64   `json:"size"`
	Hash       string  `json:"hash"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Aspect     float64 `json:"aspect"`
	Status     string  `json:"status"`
	Created    string  `json:"created"`
	Updated    string  `json:"updated"`
}

func toImageJSON(img *picstash.Image) imageJSON {
	return imageJSON{
		ID:         img.ID,
		Collection: img.Collection,
		Name:       img.Name,
		Extension:  img.Extension,
		MIME:       img.MIME,
		Size:       img.Size,
		Hash:       img.Hash,
		Width:      img.Width,
		Height:     img.Height,
		Aspect:     img.Aspect(),
		Status:     string(img.Status),
		Created:    img.CreatedAt.UTC().Format(time.RFC3339Nano),
		Updated:    img.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toImageListJSON(images []*picstash.Image) []imageJSON {
	out := make([]imageJSON, 0, len(images))
	for _, img := range images {
		out = append(out, toImageJSON(img))
	}
	return out
}

func (s *Server) listCollections(w http.ResponseWriter, r *http.Request) {
	ids, err := s.lib.Collections()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"collections": ids})
}

func (s *Server) createCollection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	if _, err := s.lib.CreateCollection(req.ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"id": req.ID})
}

func (s *Server) getCollection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "collection")
	count, err := s.lib.CountImages(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"id": id, "images": count})
}

func (s *Server) deleteCollection(w http.ResponseWriter, r *http.Request) {
	if err := s.lib.DeleteCollection(chi.URLParam(r, "collection")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseListOptions reads list query parameters. Validation of the
// resulting values belongs to the domain layer.
func parseListOptions(r *http.Request) (picstash.ListOptions, error) {
	q := r.URL.Query()
	opts := picstash.ListOptions{
		Status:         q.Get("status"),
		OrderBy:        q.Get("orderBy"),
		OrderDirection: q.Get("orderDirection"),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("parsing limit: %w", picstash.ErrInvalidQuery)
		}
		opts.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("parsing offset: %w", picstash.ErrInvalidQuery)
		}
		opts.Offset = n
	}
	return opts, nil
}

func (s *Server) listImages(w http.ResponseWriter, r *http.Request) {
	opts, err := parseListOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	images, err := s.lib.ListImages(chi.URLParam(r, "collection"), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"images": toImageListJSON(images)})
}

func (s *Server) addImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	file, header, err := r.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "Upload too large"})
			return
		}
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing image upload"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "Upload too large"})
		return
	}

	img, err := s.lib.AddImage(chi.URLParam(r, "collection"), data, header.Filename)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toImageJSON(img))
}

func (s *Server) getImage(w http.ResponseWriter, r *http.Request) {
	img, err := s.lib.GetImage(chi.URLParam(r, "collection"), chi.URLParam(r, "image"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toImageJSON(img))
}

func (s *Server) deleteImage(w http.ResponseWriter, r *http.Request) {
	if err := s.lib.DeleteImage(chi.URLParam(r, "collection"), chi.URLParam(r, "image")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	img, err := s.lib.UpdateStatus(chi.URLParam(r, "collection"), chi.URLParam(r, "image"), req.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toImageJSON(img))
}

// batchResultJSON reports per-image outcomes in request order.
type batchResultJSON struct {
	Results   []batchEntryJSON `json:"results"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
}

type batchEntryJSON struct {
	ID    string     `json:"id"`
	Image *imageJSON `json:"image,omitempty"`
	Error string     `json:"error,omitempty"`
}

func (s *Server) batchUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs    []string `json:"imageIds"`
		Status string   `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	result, err := s.lib.BatchUpdateStatus(chi.URLParam(r, "collection"), req.IDs, req.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := batchResultJSON{
		Results:   make([]batchEntryJSON, 0, len(result.Updates)),
		Succeeded: result.Succeeded(),
		Failed:    result.Failed(),
	}
	for _, u := range result.Updates {
		entry := batchEntryJSON{ID: u.ImageID}
		if u.Err != nil {
			entry.Error = errorMessage(u.Err)
		} else {
			img := toImageJSON(u.Image)
			entry.Image = &img
		}
		out.Results = append(out.Results, entry)
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) serveOriginal(w http.ResponseWriter, r *http.Request) {
	img, rc, err := s.lib.OpenOriginal(chi.URLParam(r, "collection"), chi.URLParam(r, "image"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer rc.Close()
	w.Header().Set("Content-Type", img.MIME)
	w.Header().Set("Content-Length", strconv.FormatInt(img.Size, 10))
	s.copyBody(w, rc)
}

func (s *Server) serveThumbnail(w http.ResponseWriter, r *http.Request) {
	rc, size, err := s.lib.OpenThumbnail(chi.URLParam(r, "collection"), chi.URLParam(r, "image"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer rc.Close()
	w.Header().Set("Content-Type", picstash.ThumbnailMIME)
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	s.copyBody(w, rc)
}

func (s *Server) downloadImage(w http.ResponseWriter, r *http.Request) {
	img, rc, err := s.lib.OpenOriginal(chi.URLParam(r, "collection"), chi.URLParam(r, "image"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer rc.Close()
	w.Header().Set("Content-Type", img.MIME)
	w.Header().Set("Content-Length", strconv.FormatInt(img.Size, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", img.Filename()))
	s.copyBody(w, rc)
}

func (s *Server) exportArchive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string   `json:"name"`
		IDs  []string `json:"imageIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	export, err := s.lib.ExportArchive(chi.URLParam(r, "collection"), req.IDs, req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer export.Close()
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Length", strconv.FormatInt(export.Size, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	s.copyBody(w, export)
}

func (s *Server) copyBody(w http.ResponseWriter, r io.Reader) {
	if _, err := io.Copy(w, r); err != nil {
		s.logger.Debug("streaming response body", "error", err)
	}
}
