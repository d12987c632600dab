package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const longLine = "Photosynthesis converts light energy into chemical energy."

func TestExtractFile_Text(t *testing.T) {
	text, err := ExtractFile("notes.TXT", []byte("Cells are the unit of life."))
	require.NoError(t, err)
	assert.Equal(t, "Cells are the unit of life.", text)
}

func TestExtractFile_SniffsPlainText(t *testing.T) {
	text, err := ExtractFile("notes", []byte("plain words"))
	require.NoError(t, err)
	assert.Equal(t, "plain words", text)
}

func TestExtractFile_InvalidUTF8(t *testing.T) {
	_, err := ExtractFile("notes.txt", []byte{0xff, 0xfe, 0xfd})
	assert.Error(t, err)
}

func TestExtractFile_BrokenPDF(t *testing.T) {
	_, err := ExtractFile("paper.pdf", []byte("%PDF-1.4 truncated"))
	assert.Error(t, err)
}

func TestExtractFile_Unsupported(t *testing.T) {
	_, err := ExtractFile("slides.pptx", []byte{0x50, 0x4b, 0x03, 0x04})
	var unsupported *UnsupportedTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "slides.pptx", unsupported.Name)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "", CleanText(""))
	assert.Equal(t, "a b c", CleanText("  a\n\n\tb \x00 c  "))
}

func TestChunkText(t *testing.T) {
	assert.Equal(t, []string{"short"}, ChunkText("short", 100))

	chunks := ChunkText("aaaa bbbb cccc dddd", 10)
	assert.Equal(t, []string{"aaaa bbbb", "cccc dddd"}, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 10)
	}

	// A word longer than the limit still forms its own chunk.
	assert.Equal(t, []string{"tiny", "enormousword", "x"}, ChunkText("tiny enormousword x", 8))
}

func TestContentHash(t *testing.T) {
	a := ContentHash("hello")
	assert.Len(t, a, 64)
	assert.Equal(t, a, ContentHash("hello"))
	assert.NotEqual(t, a, ContentHash("hello!"))
}

func TestExtractArticle_PrefersArticle(t *testing.T) {
	page := `<html><head><style>body{}</style></head><body>
		<nav>Home | About | Contact us today for more</nav>
		<div>Sidebar text that is long enough to count</div>
		<article>
			<h1>Short</h1>
			<p>` + longLine + `</p>
			<p>Chlorophyll <b>absorbs</b> mostly blue and red light.</p>
			<script>var tracking = "this should never appear anywhere";</script>
		</article>
		<footer>Copyright notice that is long enough to count</footer>
	</body></html>`

	text, err := ExtractArticle(strings.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, longLine+"\n\nChlorophyll absorbs mostly blue and red light.", text)
}

func TestExtractArticle_ClassAndIDSelectors(t *testing.T) {
	page := `<body><div class="wrapper post-content">` + longLine + `</div><div>Unrelated text outside the content block</div></body>`
	text, err := ExtractArticle(strings.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, longLine, text)

	page = `<body><section id="content">` + longLine + `</section><p>Unrelated text outside the content block</p></body>`
	text, err = ExtractArticle(strings.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, longLine, text)
}

func TestExtractArticle_BodyFallback(t *testing.T) {
	page := `<body><header>Site header that is long enough</header><p>` + longLine + `</p><p>tiny</p></body>`
	text, err := ExtractArticle(strings.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, longLine, text)
}

func TestFetch_Success(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "<html><body><main><p>%s</p></main></body></html>", longLine)
	}))
	defer server.Close()

	text, err := FetchURL(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, longLine, text)
	assert.Equal(t, DefaultUserAgent, gotUA)
}

func TestFetch_StatusErrors(t *testing.T) {
	tests := []struct {
		status  int
		message string
	}{
		{http.StatusNotFound, "Page not found (404)"},
		{http.StatusForbidden, "Access denied"},
		{http.StatusInternalServerError, "Code: 500"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			_, err := FetchURL(context.Background(), server.URL)
			var ferr *FetchError
			require.ErrorAs(t, err, &ferr)
			assert.Equal(t, tt.status, ferr.StatusCode)
			assert.Contains(t, ferr.Message(), tt.message)
		})
	}
}

func TestFetch_NoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><p>too short</p><script>long script content here for sure</script></body></html>")
	}))
	defer server.Close()

	_, err := FetchURL(context.Background(), server.URL)
	assert.True(t, errors.Is(err, ErrNoContent))
}

func TestFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	f := NewFetcher(&http.Client{Timeout: 50 * time.Millisecond})
	_, err := f.Fetch(context.Background(), server.URL)
	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	assert.True(t, ferr.Timeout)
	assert.Contains(t, ferr.Message(), "too long to respond")
}

func TestFetch_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := FetchURL(context.Background(), url)
	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	assert.Zero(t, ferr.StatusCode)
	assert.Contains(t, ferr.Message(), "Couldn't connect")
}
