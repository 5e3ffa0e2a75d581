package scan

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scandeck/scandeck/pkg/finding"
	"github.com/scandeck/scandeck/pkg/payloads"
	"github.com/scandeck/scandeck/pkg/probe"
)

func xssScanner(srv *httptest.Server) *XSSScanner {
	return &XSSScanner{Dispatcher: probe.New(probe.Options{Client: srv.Client()})}
}

func sqliScanner(srv *httptest.Server) *SQLiScanner {
	return &SQLiScanner{NewDispatcher: func(auth *probe.BasicAuth) *probe.Dispatcher {
		return probe.New(probe.Options{Client: srv.Client(), Auth: auth})
	}}
}

// TestSQLi_EmptyParameterFatalPath: a URL without a query string and no
// caller-supplied names yields the fixed error text and an empty
// vulnerabilities list, with no probing performed.
func TestSQLi_EmptyParameterFatalPath(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	result := sqliScanner(srv).Run(context.Background(), SQLiOptions{URL: srv.URL + "/"})
	require.NotNil(t, result.Error)
	assert.Equal(t, "No parameters found to test for SQL injection", *result.Error)
	assert.Empty(t, result.Vulnerabilities)
	assert.Empty(t, result.TestedURLs)
	assert.Zero(t, hits.Load())
}

func TestSQLi_MalformedURLFatal(t *testing.T) {
	t.Parallel()

	result := (&SQLiScanner{}).Run(context.Background(), SQLiOptions{URL: "not a url"})
	require.NotNil(t, result.Error)
	assert.Empty(t, result.Vulnerabilities)
}

func TestSQLi_ErrorSignatureYieldsSingleFinding(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Query().Get("id"), "'") {
			fmt.Fprint(w, "You have an error in your SQL syntax near ''1'='1'")
			return
		}
		fmt.Fprint(w, "<html>product page</html>")
	}))
	defer srv.Close()

	result := sqliScanner(srv).Run(context.Background(), SQLiOptions{
		URL:   srv.URL + "/item?id=3",
		Level: payloads.LevelBasic,
	})
	require.Nil(t, result.Error)
	assert.Equal(t, []string{"id"}, result.TestedParams)
	assert.Len(t, result.TestedURLs, len(payloads.ForSQLi(payloads.LevelBasic)))

	require.NotEmpty(t, result.Vulnerabilities)
	// Dedup: each finding must be a distinct (location, payload) pair.
	seen := map[string]bool{}
	for _, f := range result.Vulnerabilities {
		p := ""
		if f.Payload != nil {
			p = *f.Payload
		}
		key := f.Location + "\x00" + p
		assert.False(t, seen[key], "duplicate finding for %s", key)
		seen[key] = true
		assert.Equal(t, finding.SQLInjection, f.Type)
		assert.Equal(t, finding.High, f.Severity)
		assert.Equal(t, "id", f.Location)
	}
}

func TestSQLi_ProbeFailuresAreSwallowed(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hj := w.(http.Hijacker)
		conn, _, _ := hj.Hijack()
		conn.Close()
	}))
	defer srv.Close()

	result := sqliScanner(srv).Run(context.Background(), SQLiOptions{
		URL:   srv.URL + "/?id=1",
		Level: payloads.LevelBasic,
	})
	assert.Nil(t, result.Error, "per-probe failures are not scan errors")
	assert.Empty(t, result.Vulnerabilities)
	assert.Len(t, result.TestedURLs, len(payloads.ForSQLi(payloads.LevelBasic)),
		"mutated URLs are recorded even for failed probes")
}

// TestXSS_FragmentProbeTermination: fragment probing must stop issuing
// payload requests as soon as one fragment finding is confirmed.
func TestXSS_FragmentProbeTermination(t *testing.T) {
	t.Parallel()

	var fragmentHits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fragmentHits.Add(1)
		fmt.Fprint(w, `<script>render(window.location.hash)</script>`)
	}))
	defer srv.Close()

	s := xssScanner(srv)
	set := finding.NewSet()
	list := payloads.ForXSS(payloads.DepthDeep)
	s.probeFragments(context.Background(), srv.URL+"/", list, set)

	assert.Equal(t, 1, set.Len())
	assert.Equal(t, int32(1), fragmentHits.Load(),
		"first confirmed fragment finding must stop further payload requests")
}

func TestXSS_ReflectedStopsAfterFirstConfirmedHit(t *testing.T) {
	t.Parallel()

	var probeHits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		probeHits.Add(1)
		fmt.Fprintf(w, "<html>result for %s</html>", r.URL.Query().Get("q"))
	}))
	defer srv.Close()

	result := xssScanner(srv).Run(context.Background(), XSSOptions{
		URL:      srv.URL + "/?q=test",
		ScanType: XSSReflected,
		Depth:    payloads.DepthDeep,
	})

	require.Nil(t, result.Error)
	require.Len(t, result.Vulnerabilities, 1, "one confirmed reflection per parameter")
	assert.Equal(t, finding.ReflectedXSS, result.Vulnerabilities[0].Type)
	// First payload reflects and confirms: one probe plus one token retest.
	assert.Equal(t, int32(2), probeHits.Load())
}

func TestXSS_MalformedURLFatal(t *testing.T) {
	t.Parallel()

	result := (&XSSScanner{Dispatcher: probe.New(probe.Options{})}).Run(context.Background(), XSSOptions{URL: "://bad"})
	require.NotNil(t, result.Error)
	assert.Empty(t, result.Vulnerabilities)
	assert.Nil(t, result.SecurityScore)
}

func TestXSS_CleanTargetGradesA(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>static page, no scripts, no forms</body></html>")
	}))
	defer srv.Close()

	result := xssScanner(srv).Run(context.Background(), XSSOptions{
		URL:      srv.URL + "/?q=1",
		ScanType: XSSComprehensive,
	})
	require.Nil(t, result.Error)
	assert.Empty(t, result.Vulnerabilities)
	require.NotNil(t, result.SecurityScore)
	assert.Equal(t, "A", *result.SecurityScore)
	assert.NotEmpty(t, result.Recommendations)
}

func TestXSS_CustomPayloadsReplaceCatalog(t *testing.T) {
	t.Parallel()

	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.Query().Get("q"))
		fmt.Fprint(w, "<html>nothing reflected</html>")
	}))
	defer srv.Close()

	_ = xssScanner(srv).Run(context.Background(), XSSOptions{
		URL:            srv.URL + "/?q=1",
		ScanType:       XSSReflected,
		CustomPayloads: "custom-one\ncustom-two\n",
	})

	assert.Equal(t, []string{"custom-one", "custom-two"}, seen,
		"custom payloads replace the catalog entirely")
}

func TestXSS_SyntheticPointUsedWithoutParams(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><form action="/guestbook"><textarea name="msg"></textarea></form></html>`)
	}))
	defer srv.Close()

	result := xssScanner(srv).Run(context.Background(), XSSOptions{
		URL:      srv.URL + "/",
		ScanType: XSSStored,
	})
	require.Nil(t, result.Error)
	assert.Equal(t, []string{"page-content"}, result.ScannedElements)
	require.Len(t, result.Vulnerabilities, 1)
	assert.Equal(t, finding.PotentialStoredXSS, result.Vulnerabilities[0].Type)
}
