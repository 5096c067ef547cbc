package web

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bioassist/internal/domain"
)

type fakeAgent struct {
	answer string
	asked  []string
}

func (f *fakeAgent) Answer(_ context.Context, question string) string {
	f.asked = append(f.asked, question)
	return f.answer
}

func (f *fakeAgent) Mode() domain.ContextMode { return domain.ContextRegular }

func newTestServer(answer string) (*Server, *fakeAgent) {
	agent := &fakeAgent{answer: answer}
	info := Info{
		LLMModel:    "gemma:2b",
		ContextMode: "regular",
		StorePath:   ".kb_store",
		DataDir:     "data",
	}
	return NewServer(agent, info, nil), agent
}

func TestIndex_showsConfiguration(t *testing.T) {
	s, _ := newTestServer("")
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := readBody(t, resp)
	assert.Contains(t, body, "gemma:2b")
	assert.Contains(t, body, "regular")
	assert.Contains(t, body, ".kb_store")
	assert.Contains(t, body, "data")
}

func TestChatForm_appendsTranscriptAndRedirects(t *testing.T) {
	s, agent := newTestServer("Two identical copies.")
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.PostForm(srv.URL+"/chat", map[string][]string{
		"question": {"What is DNA replication?"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, []string{"What is DNA replication?"}, agent.asked)

	page, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer page.Body.Close()
	body := readBody(t, page)
	assert.Contains(t, body, "What is DNA replication?")
	assert.Contains(t, body, "Two identical copies.")
}

func TestChatForm_emptyQuestionIgnored(t *testing.T) {
	s, agent := newTestServer("x")
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	resp, err := http.PostForm(srv.URL+"/chat", map[string][]string{"question": {"   "}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, agent.asked)
}

func TestChatAPI_returnsAnswer(t *testing.T) {
	s, agent := newTestServer("PCR amplifies DNA.")
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/chat", "application/json",
		strings.NewReader(`{"question":"What is PCR?"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"answer":"PCR amplifies DNA."}`, readBody(t, resp))
	assert.Equal(t, []string{"What is PCR?"}, agent.asked)
}

func TestChatAPI_rejectsBadRequests(t *testing.T) {
	s, _ := newTestServer("x")
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/chat", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/api/chat", "application/json", strings.NewReader(`{"question":""}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer("")
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}
