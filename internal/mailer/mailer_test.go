package mailer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailgunSend(t *testing.T) {
	var (
		gotPath     string
		gotUser     string
		gotPassword string
		gotForm     map[string]string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPassword, _ = r.BasicAuth()
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"from":    r.PostForm.Get("from"),
			"to":      r.PostForm.Get("to"),
			"subject": r.PostForm.Get("subject"),
			"html":    r.PostForm.Get("html"),
			"text":    r.PostForm.Get("text"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"<1@mg>","message":"Queued. Thank you."}`))
	}))
	defer server.Close()

	m := NewMailgun(server.URL+"/", "mg.example.com", "key-123", "Contacts <no-reply@example.com>")
	err := m.Send(context.Background(), Message{
		To:      "a@b.com",
		Subject: "Verify your email",
		HTML:    "<a href=\"x\">x</a>",
		Text:    "x",
	})
	require.NoError(t, err)

	assert.Equal(t, "/v3/mg.example.com/messages", gotPath)
	assert.Equal(t, "api", gotUser)
	assert.Equal(t, "key-123", gotPassword)
	assert.Equal(t, map[string]string{
		"from":    "Contacts <no-reply@example.com>",
		"to":      "a@b.com",
		"subject": "Verify your email",
		"html":    "<a href=\"x\">x</a>",
		"text":    "x",
	}, gotForm)
}

func TestMailgunSendRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Forbidden", http.StatusUnauthorized)
	}))
	defer server.Close()

	m := NewMailgun(server.URL, "mg.example.com", "wrong", "from@example.com")
	err := m.Send(context.Background(), Message{To: "a@b.com", Subject: "s", Text: "t"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestLogMailer(t *testing.T) {
	assert.NoError(t, NewLogMailer().Send(context.Background(), Message{To: "a@b.com"}))
}
