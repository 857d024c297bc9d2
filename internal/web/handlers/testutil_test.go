package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/faceid/internal/database/mock"
	"github.com/kozaktomas/faceid/internal/embedding"
	"github.com/kozaktomas/faceid/internal/recognition"
)

const testImageSize = 24

// testPoints returns a deterministic mesh of n points inside the face area.
func testPoints(n int, seed float64) []map[string]float64 {
	points := make([]map[string]float64, n)
	for i := range points {
		fx := math.Mod(float64(i)*0.618+seed, 1)
		fy := math.Mod(float64(i)*0.382+seed*0.5, 1)
		points[i] = map[string]float64{"x": 0.2 + 0.6*fx, "y": 0.2 + 0.6*fy}
	}
	return points
}

// testImageData returns an RGBA gradient as the JSON number array clients send.
func testImageData(w, h int) []float64 {
	data := make([]float64, 0, w*h*4)
	for y := range h {
		for x := range w {
			data = append(data, float64(x*255/w), float64(y*255/h), 120, 255)
		}
	}
	return data
}

// probePayload builds the landmarks and faceImageData part of a request body.
func probePayload(points int, seed float64) map[string]any {
	return map[string]any{
		"landmarks": map[string]any{"points": testPoints(points, seed)},
		"faceImageData": map[string]any{
			"data":   testImageData(testImageSize, testImageSize),
			"width":  testImageSize,
			"height": testImageSize,
		},
	}
}

// probeEmbedding computes what the service will compute for probePayload(468, seed).
func probeEmbedding(t *testing.T, seed float64) embedding.Embedding {
	t.Helper()
	raw := testPoints(embedding.MeshLandmarkCount, seed)
	points := make(embedding.LandmarkSet, len(raw))
	for i, p := range raw {
		points[i] = embedding.Landmark{X: p["x"], Y: p["y"]}
	}
	data := testImageData(testImageSize, testImageSize)
	pix := make([]uint8, len(data))
	for i, v := range data {
		pix[i] = uint8(v)
	}
	emb, err := embedding.Generate(points, embedding.FaceImage{Width: testImageSize, Height: testImageSize, Pix: pix})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	return emb
}

// newTestService wires a service over a fresh mock store.
func newTestService() (*recognition.Service, *mock.MockTemplateStore) {
	store := mock.NewMockTemplateStore()
	return recognition.NewService(store, recognition.NewPool(2), 0), store
}

// jsonRequest creates a request with a JSON-encoded body
func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%v'", expectedMessage, result["error"])
	}
}
