package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kozaktomas/faceid/internal/database"
	"github.com/kozaktomas/faceid/internal/embedding"
)

func registerBody(name string, points int, seed float64) map[string]any {
	body := probePayload(points, seed)
	body["name"] = name
	return body
}

func register(t *testing.T, handler *FacesHandler, name string, seed float64) registerResponse {
	t.Helper()
	recorder := httptest.NewRecorder()
	handler.Register(recorder, jsonRequest(t, http.MethodPost, "/api/v1/faces/register", registerBody(name, embedding.MeshLandmarkCount, seed)))
	assertStatusCode(t, recorder, http.StatusOK)

	var resp registerResponse
	parseJSONResponse(t, recorder, &resp)
	return resp
}

func recognize(t *testing.T, handler *FacesHandler, body map[string]any) (*httptest.ResponseRecorder, recognizeResponse) {
	t.Helper()
	recorder := httptest.NewRecorder()
	handler.Recognize(recorder, jsonRequest(t, http.MethodPost, "/api/v1/faces/recognize", body))

	var resp recognizeResponse
	if recorder.Code == http.StatusOK {
		parseJSONResponse(t, recorder, &resp)
	}
	return recorder, resp
}

func TestFacesHandler_Register(t *testing.T) {
	service, store := newTestService()
	handler := NewFacesHandler(service)

	resp := register(t, handler, "Alice", 0.1)

	if !resp.Success || resp.ID == "" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Message != "Face registered successfully" {
		t.Errorf("unexpected message %q", resp.Message)
	}
	if resp.EmbeddingLength != embedding.Dim {
		t.Errorf("expected embeddingLength %d, got %d", embedding.Dim, resp.EmbeddingLength)
	}

	if _, err := store.Get(t.Context(), resp.ID); err != nil {
		t.Errorf("template not stored: %v", err)
	}
}

func TestFacesHandler_Register_AccentedNameAtLimit(t *testing.T) {
	service, store := newTestService()
	handler := NewFacesHandler(service)

	name := strings.Repeat("é", 128)
	resp := register(t, handler, name, 0.1)

	got, err := store.Get(t.Context(), resp.ID)
	if err != nil {
		t.Fatalf("template not stored: %v", err)
	}
	if got.Name != name {
		t.Errorf("stored name = %q, want %q", got.Name, name)
	}
}

func TestFacesHandler_Register_IrisMesh(t *testing.T) {
	service, _ := newTestService()
	handler := NewFacesHandler(service)

	recorder := httptest.NewRecorder()
	handler.Register(recorder, jsonRequest(t, http.MethodPost, "/api/v1/faces/register", registerBody("Alice", 478, 0.1)))

	assertStatusCode(t, recorder, http.StatusOK)
}

func TestFacesHandler_Register_TooFewLandmarks(t *testing.T) {
	service, store := newTestService()
	handler := NewFacesHandler(service)

	recorder := httptest.NewRecorder()
	handler.Register(recorder, jsonRequest(t, http.MethodPost, "/api/v1/faces/register", registerBody("Alice", 100, 0.1)))

	assertStatusCode(t, recorder, http.StatusBadRequest)

	var resp landmarkCountError
	parseJSONResponse(t, recorder, &resp)
	if resp.Received != 100 || resp.Expected != embedding.MeshLandmarkCount {
		t.Errorf("unexpected counts: %+v", resp)
	}
	if resp.Error != "Invalid landmarks: must have 468 points, received 100" {
		t.Errorf("unexpected error %q", resp.Error)
	}

	if n, _ := store.Count(t.Context()); n != 0 {
		t.Errorf("expected nothing stored, got %d", n)
	}
}

func TestFacesHandler_Register_BadInput(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "missing name", body: probePayload(embedding.MeshLandmarkCount, 0.1)},
		{name: "blank name", body: registerBody("  ", embedding.MeshLandmarkCount, 0.1)},
		{name: "missing landmarks", body: map[string]any{"name": "Alice", "faceImageData": probePayload(1, 0)["faceImageData"]}},
		{name: "overflowing image width", body: func() map[string]any {
			b := registerBody("Alice", embedding.MeshLandmarkCount, 0.1)
			b["faceImageData"] = map[string]any{"data": []float64{}, "width": 1 << 62, "height": 1}
			return b
		}()},
		{name: "image size mismatch", body: func() map[string]any {
			b := registerBody("Alice", embedding.MeshLandmarkCount, 0.1)
			b["faceImageData"] = map[string]any{"data": []float64{1, 2, 3}, "width": 2, "height": 2}
			return b
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newTestService()
			recorder := httptest.NewRecorder()
			NewFacesHandler(service).Register(recorder, jsonRequest(t, http.MethodPost, "/api/v1/faces/register", tt.body))
			assertStatusCode(t, recorder, http.StatusBadRequest)
		})
	}
}

func TestFacesHandler_Register_StoreUnavailable(t *testing.T) {
	service, store := newTestService()
	store.SaveError = errors.New("connection reset")

	recorder := httptest.NewRecorder()
	NewFacesHandler(service).Register(recorder, jsonRequest(t, http.MethodPost, "/api/v1/faces/register", registerBody("Alice", embedding.MeshLandmarkCount, 0.1)))

	assertStatusCode(t, recorder, http.StatusServiceUnavailable)
	assertJSONError(t, recorder, "failed to register face")
}

func TestFacesHandler_Recognize_EmptyGallery(t *testing.T) {
	service, _ := newTestService()

	recorder, resp := recognize(t, NewFacesHandler(service), probePayload(embedding.MeshLandmarkCount, 0.1))

	assertStatusCode(t, recorder, http.StatusOK)
	if resp.Success || resp.Registered || resp.Match != nil {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Outcome != "empty_gallery" {
		t.Errorf("expected outcome empty_gallery, got %s", resp.Outcome)
	}
	if resp.Message != "No users registered in database" {
		t.Errorf("unexpected message %q", resp.Message)
	}
}

func TestFacesHandler_Recognize_Matched(t *testing.T) {
	service, _ := newTestService()
	handler := NewFacesHandler(service)
	enrolled := register(t, handler, "Alice", 0.1)

	recorder, resp := recognize(t, handler, probePayload(embedding.MeshLandmarkCount, 0.1))

	assertStatusCode(t, recorder, http.StatusOK)
	if !resp.Success || !resp.Registered {
		t.Fatalf("expected a match, got %+v", resp)
	}
	if resp.Match == nil || resp.Match.ID != enrolled.ID || resp.Match.Name != "Alice" {
		t.Errorf("unexpected match: %+v", resp.Match)
	}
	if resp.Match.CreatedAt == nil || resp.Match.CreatedAt.IsZero() {
		t.Error("expected createdAt on match")
	}
	if resp.Message != "Face recognized as Alice" {
		t.Errorf("unexpected message %q", resp.Message)
	}
	if resp.Similarity < 0.999 {
		t.Errorf("expected near-identical similarity, got %v", resp.Similarity)
	}
}

func TestFacesHandler_Recognize_Ambiguous(t *testing.T) {
	service, _ := newTestService()
	handler := NewFacesHandler(service)
	register(t, handler, "Alice", 0.1)
	register(t, handler, "Alice's twin", 0.1)

	recorder, resp := recognize(t, handler, probePayload(embedding.MeshLandmarkCount, 0.1))

	assertStatusCode(t, recorder, http.StatusOK)
	if resp.Success || resp.Match != nil {
		t.Errorf("ambiguous result must not identify anyone: %+v", resp)
	}
	if resp.Outcome != "ambiguous" {
		t.Errorf("expected outcome ambiguous, got %s", resp.Outcome)
	}
	if resp.Decision.GallerySize != 2 {
		t.Errorf("expected gallery size 2, got %d", resp.Decision.GallerySize)
	}
}

func TestFacesHandler_Recognize_NoMatch(t *testing.T) {
	service, store := newTestService()
	handler := NewFacesHandler(service)

	// The exact opposite direction scores -1.
	emb := probeEmbedding(t, 0.1)
	opposite := make([]float32, len(emb))
	for i, v := range emb {
		opposite[i] = -v
	}
	store.AddTemplate(database.EnrolledTemplate{ID: "bob", Name: "Bob", Embedding: opposite, CreatedAt: time.Now()})

	recorder, resp := recognize(t, handler, probePayload(embedding.MeshLandmarkCount, 0.1))

	assertStatusCode(t, recorder, http.StatusOK)
	if resp.Success || resp.Match != nil || resp.Outcome != "no_match" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Message != "Face not recognized - no match found" {
		t.Errorf("unexpected message %q", resp.Message)
	}
}

func TestFacesHandler_Recognize_Threshold(t *testing.T) {
	tests := []struct {
		name      string
		threshold any
		expected  int
	}{
		{"valid", 0.9, http.StatusOK},
		{"zero", 0, http.StatusBadRequest},
		{"negative", -0.5, http.StatusBadRequest},
		{"above one", 1.5, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newTestService()
			body := probePayload(embedding.MeshLandmarkCount, 0.1)
			body["threshold"] = tt.threshold

			recorder, resp := recognize(t, NewFacesHandler(service), body)
			assertStatusCode(t, recorder, tt.expected)
			if tt.expected == http.StatusOK && resp.Decision.Threshold != 0.9 {
				t.Errorf("expected threshold 0.9 in decision, got %v", resp.Decision.Threshold)
			}
		})
	}
}

func TestFacesHandler_Recognize_StoreUnavailable(t *testing.T) {
	service, store := newTestService()
	store.ListError = errors.New("timeout")

	recorder, _ := recognize(t, NewFacesHandler(service), probePayload(embedding.MeshLandmarkCount, 0.1))

	assertStatusCode(t, recorder, http.StatusServiceUnavailable)
}

func TestFacesHandler_List(t *testing.T) {
	service, _ := newTestService()
	handler := NewFacesHandler(service)
	register(t, handler, "Alice", 0.1)
	register(t, handler, "Bob", 0.4)

	recorder := httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/faces", nil))

	assertStatusCode(t, recorder, http.StatusOK)

	var resp listResponse
	parseJSONResponse(t, recorder, &resp)
	if !resp.Success || resp.Count != 2 || len(resp.Faces) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	for _, f := range resp.Faces {
		if f.EmbeddingLength != embedding.Dim {
			t.Errorf("face %s: embeddingLength = %d", f.Name, f.EmbeddingLength)
		}
	}
}

func TestFacesHandler_List_Empty(t *testing.T) {
	service, _ := newTestService()

	recorder := httptest.NewRecorder()
	NewFacesHandler(service).List(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/faces", nil))

	assertStatusCode(t, recorder, http.StatusOK)
	if got := recorder.Body.String(); got != "{\"success\":true,\"count\":0,\"faces\":[]}\n" {
		t.Errorf("unexpected body %s", got)
	}
}

func TestFacesHandler_Get(t *testing.T) {
	service, _ := newTestService()
	handler := NewFacesHandler(service)
	enrolled := register(t, handler, "Alice", 0.1)

	recorder := httptest.NewRecorder()
	req := requestWithChiParams(httptest.NewRequest(http.MethodGet, "/api/v1/faces/"+enrolled.ID, nil), map[string]string{"id": enrolled.ID})
	handler.Get(recorder, req)
	assertStatusCode(t, recorder, http.StatusOK)

	recorder = httptest.NewRecorder()
	req = requestWithChiParams(httptest.NewRequest(http.MethodGet, "/api/v1/faces/missing", nil), map[string]string{"id": "missing"})
	handler.Get(recorder, req)
	assertStatusCode(t, recorder, http.StatusNotFound)
	assertJSONError(t, recorder, "face not found")
}

func TestFacesHandler_Delete(t *testing.T) {
	service, store := newTestService()
	handler := NewFacesHandler(service)
	enrolled := register(t, handler, "Alice", 0.1)

	recorder := httptest.NewRecorder()
	req := requestWithChiParams(httptest.NewRequest(http.MethodDelete, "/api/v1/faces/"+enrolled.ID, nil), map[string]string{"id": enrolled.ID})
	handler.Delete(recorder, req)
	assertStatusCode(t, recorder, http.StatusNoContent)

	if n, _ := store.Count(t.Context()); n != 0 {
		t.Errorf("expected empty store, got %d", n)
	}

	recorder = httptest.NewRecorder()
	handler.Delete(recorder, req)
	assertStatusCode(t, recorder, http.StatusNotFound)
}
