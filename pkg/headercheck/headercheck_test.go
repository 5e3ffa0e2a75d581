package headercheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scandeck/scandeck/pkg/finding"
	"github.com/scandeck/scandeck/pkg/probe"
)

func TestHardenedTargetGradesA(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", "default-src 'self'")
		h.Set("Strict-Transport-Security", "max-age=63072000")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Permissions-Policy", "camera=()")
	}))
	defer srv.Close()

	c := &Checker{Dispatcher: probe.New(probe.Options{})}
	res := c.Run(context.Background(), srv.URL)
	require.Nil(t, res.Error)
	assert.Empty(t, res.Findings)
	assert.Equal(t, "A", res.Grade)
	assert.Len(t, res.PresentHeaders, 6)
}

func TestBareTargetReportsMissingHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Powered-By", "PHP/5.6")
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	c := &Checker{Dispatcher: probe.New(probe.Options{})}
	res := c.Run(context.Background(), srv.URL)
	require.Nil(t, res.Error)
	assert.Len(t, res.Findings, 6)
	for _, f := range res.Findings {
		assert.Equal(t, finding.MissingHeader, f.Type)
	}
	// Three medium misses push the grade to D.
	assert.Equal(t, "D", res.Grade)
	assert.Equal(t, "PHP/5.6", res.LeakedHeaders["X-Powered-By"])
}

func TestMalformedURLIsRecordedNotFatal(t *testing.T) {
	c := &Checker{Dispatcher: probe.New(probe.Options{})}
	res := c.Run(context.Background(), "not a url")
	require.NotNil(t, res.Error)
	assert.Empty(t, res.Grade)
}
