package facedetect

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/menta2k/strip-composer/pkg/types"
)

// fakeClient returns a canned response or error for every query.
type fakeClient struct {
	response string
	err      error
	queries  int
}

func (f *fakeClient) Query(ctx context.Context, model, prompt, imgB64 string) (string, error) {
	f.queries++
	return f.response, f.err
}

func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 96, 255})
		}
	}
	return img
}

func TestCenterDetector(t *testing.T) {
	fp := CenterDetector{}.Detect(context.Background(), createTestImage(100, 100))

	if fp != types.CenterFocalPoint() {
		t.Errorf("CenterDetector returned %+v; want center fallback", fp)
	}
}

func TestParseFaceResponse(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected types.FocalPoint
	}{
		{
			"clean json",
			`{"found":true,"confidence":0.9,"box":{"x":0.3,"y":0.1,"w":0.2,"h":0.2},"cx":0.4,"cy":0.2}`,
			types.FocalPoint{X: 0.4, Y: 0.2, Found: true},
		},
		{
			"fenced json",
			"```json\n{\"found\":true,\"confidence\":0.8,\"box\":{\"x\":0.4,\"y\":0.4,\"w\":0.2,\"h\":0.2},\"cx\":0.5,\"cy\":0.5}\n```",
			types.FocalPoint{X: 0.5, Y: 0.5, Found: true},
		},
		{
			"json with trailing comma",
			`{"found":true,"cx":0.6,"cy":0.3,}`,
			types.FocalPoint{X: 0.6, Y: 0.3, Found: true},
		},
		{
			"missing center derived from box",
			`{"found":true,"box":{"x":0.2,"y":0.4,"w":0.2,"h":0.2}}`,
			types.FocalPoint{X: 0.3, Y: 0.5, Found: true},
		},
		{
			"no face",
			`{"found":false,"confidence":0.0,"box":{"x":0.25,"y":0.25,"w":0.5,"h":0.5},"cx":0.5,"cy":0.5}`,
			types.CenterFocalPoint(),
		},
		{
			"overshooting coordinates clamp",
			`{"found":true,"cx":1.4,"cy":-0.2}`,
			types.FocalPoint{X: 1, Y: 0, Found: true},
		},
		{
			"prose instead of json",
			"I see a person standing in a park.",
			types.CenterFocalPoint(),
		},
		{
			"garbage",
			"}{{{not json",
			types.CenterFocalPoint(),
		},
		{
			"empty",
			"",
			types.CenterFocalPoint(),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseFaceResponse(tc.raw)
			if got != tc.expected {
				t.Errorf("ParseFaceResponse(%q) = %+v; want %+v", tc.raw, got, tc.expected)
			}
		})
	}
}

func TestVisionDetectorHappyPath(t *testing.T) {
	fake := &fakeClient{
		response: `{"found":true,"confidence":0.95,"box":{"x":0.3,"y":0.05,"w":0.2,"h":0.25},"cx":0.4,"cy":0.18}`,
	}
	detector := NewVisionDetector(fake, "test-model")

	fp := detector.Detect(context.Background(), createTestImage(640, 480))

	if !fp.Found {
		t.Fatal("Expected a found face")
	}
	if fp.X != 0.4 || fp.Y != 0.18 {
		t.Errorf("Focal point = (%f,%f); want (0.4,0.18)", fp.X, fp.Y)
	}
	if fake.queries != 1 {
		t.Errorf("Expected exactly one query, got %d", fake.queries)
	}
}

func TestVisionDetectorFailsOpen(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeClient
	}{
		{"transport error", &fakeClient{err: errors.New("connection refused")}},
		{"unparseable response", &fakeClient{response: "sorry, I cannot help with that"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			detector := NewVisionDetector(tc.fake, "test-model")
			fp := detector.Detect(context.Background(), createTestImage(320, 240))

			if fp != types.CenterFocalPoint() {
				t.Errorf("Detect = %+v; want center fallback", fp)
			}
		})
	}
}

func TestVisionDetectorNilImage(t *testing.T) {
	fake := &fakeClient{response: `{"found":true,"cx":0.5,"cy":0.5}`}
	detector := NewVisionDetector(fake, "test-model")

	fp := detector.Detect(context.Background(), nil)

	if fp != types.CenterFocalPoint() {
		t.Errorf("Detect(nil) = %+v; want center fallback", fp)
	}
	if fake.queries != 0 {
		t.Error("A nil image should never reach the backend")
	}
}

func TestSelectFallback(t *testing.T) {
	for _, backend := range []string{"", "none", "something-else"} {
		if _, ok := Select(backend, "", "m").(CenterDetector); !ok {
			t.Errorf("Select(%q) should return the center fallback", backend)
		}
	}
}

func TestSelectVisionBackends(t *testing.T) {
	for _, backend := range []string{"ollama", "llamacpp"} {
		if _, ok := Select(backend, "http://localhost:9999", "m").(*VisionDetector); !ok {
			t.Errorf("Select(%q) should return a vision detector", backend)
		}
	}
}
