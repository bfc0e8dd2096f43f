package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/anime-shed/ui-critic-go/pkg/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngFile(t *testing.T, w, h int) SelectedFile {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return SelectedFile{Name: uuid.NewString() + ".png", ContentType: "image/png", Data: buf.Bytes()}
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestClient_Analyze(t *testing.T) {
	file := pngFile(t, 8, 6)
	url := "/crops/a.png"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/analyze", r.URL.Path)

		f, header, err := r.FormFile("image")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, file.Data, data)
		assert.Equal(t, file.Name, header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))

		_ = json.NewEncoder(w).Encode(models.AnalysisResult{
			OverallFeedback:  "Nice",
			SpecificFeedback: []models.FeedbackItem{{Critique: "x", CroppedImageURL: &url}},
		})
	}))
	defer server.Close()

	c := New(server.URL+"/", nil)
	result, err := c.Analyze(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, "Nice", result.OverallFeedback)
	assert.Equal(t, server.URL+"/crops/a.png", c.ResolveURL(*result.SpecificFeedback[0].CroppedImageURL))
	assert.Equal(t, "https://cdn.example.com/a.png", c.ResolveURL("https://cdn.example.com/a.png"))
}

func TestClient_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(models.ErrorResponse{Error: "Failed to parse AI response"})
	}))
	defer server.Close()

	_, err := New(server.URL, nil).Analyze(context.Background(), pngFile(t, 2, 2))
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, "Failed to parse AI response", statusErr.Message)
}

func TestSelected_Preview(t *testing.T) {
	st := Selected(pngFile(t, 40, 30))
	require.NotNil(t, st.Preview)
	assert.Equal(t, 40, st.Preview.Width)
	assert.Equal(t, 30, st.Preview.Height)
	assert.Equal(t, "png", st.Preview.Format)
	assert.Equal(t, "png 40x30", st.Preview.String())
	assert.True(t, st.CanAnalyze())

	st = Selected(SelectedFile{Name: "x.bin", Data: []byte("nope")})
	assert.Nil(t, st.Preview)
	assert.NotNil(t, st.File)
}

func TestState_TransitionsDoNotMutate(t *testing.T) {
	base := Selected(pngFile(t, 4, 4)).Failed("old error")

	started := base.Started()
	assert.True(t, started.Loading)
	assert.Empty(t, started.Err)
	assert.False(t, started.CanAnalyze())

	assert.False(t, base.Loading, "receiver is unchanged")
	assert.Equal(t, "old error", base.Err)
}

type fakeAnalyzer struct {
	mu      sync.Mutex
	calls   int
	result  *models.AnalysisResult
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, file SelectedFile) (*models.AnalysisResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	return f.result, f.err
}

func TestSession_AnalyzeWithoutSelectionIsNoop(t *testing.T) {
	fake := &fakeAnalyzer{}
	s := NewSession(fake, quietLogger())

	st := s.Analyze(context.Background())
	assert.Equal(t, State{}, st)
	assert.Equal(t, 0, fake.calls)
}

func TestSession_AnalyzeSuccess(t *testing.T) {
	result := &models.AnalysisResult{OverallFeedback: "Good"}
	s := NewSession(&fakeAnalyzer{result: result}, quietLogger())

	s.Select(pngFile(t, 4, 4))
	st := s.Analyze(context.Background())

	assert.False(t, st.Loading)
	assert.Same(t, result, st.Feedback)
	assert.Empty(t, st.Err)
	assert.NotNil(t, st.File)
}

func TestSession_AnalyzeFailureShowsGenericError(t *testing.T) {
	s := NewSession(&fakeAnalyzer{err: errors.New("server responded with status 500")}, quietLogger())

	s.Select(pngFile(t, 4, 4))
	st := s.Analyze(context.Background())

	assert.Equal(t, GenericError, st.Err)
	assert.Nil(t, st.Feedback)
	assert.False(t, st.Loading)
}

func TestSession_SecondAnalyzeWhileLoadingIsIgnored(t *testing.T) {
	fake := &fakeAnalyzer{
		result:  &models.AnalysisResult{},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := NewSession(fake, quietLogger())
	s.Select(pngFile(t, 4, 4))

	done := make(chan State)
	go func() { done <- s.Analyze(context.Background()) }()
	<-fake.started

	st := s.Analyze(context.Background())
	assert.True(t, st.Loading)

	close(fake.release)
	final := <-done
	assert.False(t, final.Loading)
	assert.Equal(t, 1, fake.calls)
}

func TestSession_SelectionDuringRequestWins(t *testing.T) {
	fake := &fakeAnalyzer{
		result:  &models.AnalysisResult{OverallFeedback: "stale"},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := NewSession(fake, quietLogger())
	s.Select(pngFile(t, 4, 4))

	done := make(chan State)
	go func() { done <- s.Analyze(context.Background()) }()
	<-fake.started

	next := pngFile(t, 8, 8)
	s.Select(next)
	close(fake.release)

	st := <-done
	assert.Equal(t, next.Name, st.File.Name)
	assert.Nil(t, st.Feedback, "result for the previous file is dropped")
}

func TestSession_Remove(t *testing.T) {
	s := NewSession(&fakeAnalyzer{result: &models.AnalysisResult{}}, quietLogger())
	s.Select(pngFile(t, 4, 4))
	s.Analyze(context.Background())

	assert.Equal(t, State{}, s.Remove())
	assert.Equal(t, State{}, s.State())
}
