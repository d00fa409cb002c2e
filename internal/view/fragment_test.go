package view

import (
	"bytes"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/watchlist/internal/models"
)

func fixtureMovies() []models.Movie {
	submitted := time.Date(2026, 3, 7, 15, 0, 0, 0, time.UTC)
	watched := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	return []models.Movie{
		{Title: "Alien", Type: models.GenreMovie, Description: "In space", Name: "sam", SubmittedOn: submitted, Watched: models.StatusWatched, Rating: 4, WatchedOn: &watched},
		{Title: "Dark", Type: models.GenreSeries, Description: "Time loops", Name: "kim", SubmittedOn: submitted, Watched: models.StatusWatching},
		{Title: "Heat", Type: models.GenreMovie, SubmittedOn: submitted, Watched: models.StatusNotWatched},
	}
}

func parseFragment(t *testing.T, fragment string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body>" + fragment + "</body></html>"))
	require.NoError(t, err)
	return doc
}

func TestRenderMoviesEmpty(t *testing.T) {
	assert.Equal(t, "", RenderMovies(nil))
	assert.Equal(t, "", RenderMovies([]models.Movie{}))
}

func TestRenderMoviesStructure(t *testing.T) {
	doc := parseFragment(t, RenderMovies(fixtureMovies()))

	forms := doc.Find("form")
	require.Equal(t, 3, forms.Length())
	assert.Equal(t, 3, doc.Find("fieldset").Length())

	ids := []string{"rate-0", "rate-1", "rate-2"}
	forms.Each(func(i int, form *goquery.Selection) {
		action, _ := form.Attr("action")
		assert.Equal(t, "/rate", action)
		id, _ := form.Attr("id")
		assert.Equal(t, ids[i], id)
	})

	legends := doc.Find("legend a")
	assert.Equal(t, "Alien", legends.Eq(0).Text())
	assert.Equal(t, "Dark", legends.Eq(1).Text())
	assert.Equal(t, "Heat", legends.Eq(2).Text())

	style, _ := legends.Eq(0).Attr("style")
	assert.Equal(t, "color:#77dd77", style)
	style, _ = legends.Eq(1).Attr("style")
	assert.Equal(t, "color:#ca5cdd", style)
	style, _ = legends.Eq(2).Attr("style")
	assert.Equal(t, "color:#ff6961", style)
}

func TestRenderMoviesHiddenFields(t *testing.T) {
	doc := parseFragment(t, RenderMovies(fixtureMovies()[:1]))

	values := map[string]string{}
	doc.Find("form input[type=hidden]").Each(func(_ int, in *goquery.Selection) {
		name, _ := in.Attr("name")
		value, _ := in.Attr("value")
		values[name] = value
	})
	assert.Equal(t, map[string]string{
		"title":        "Alien",
		"type":         "movie",
		"description":  "In space",
		"name":         "sam",
		"submitted_on": "Mar 7, 2026",
		"watched":      "1",
		"rating":       "4",
	}, values)
}

func TestRenderMoviesDatesAndStars(t *testing.T) {
	doc := parseFragment(t, RenderMovies(fixtureMovies()))

	first := doc.Find("fieldset").Eq(0)
	spans := first.Find("div.separate").Eq(1).Find("span")
	assert.Equal(t, "Apr 1, 2026", spans.Eq(0).Text())
	assert.Equal(t, "Mar 7, 2026", spans.Eq(1).Text())
	assert.Equal(t, "★★★★☆", strings.Split(first.Find("span.tooltip").Text(), " ")[0])

	second := doc.Find("fieldset").Eq(1)
	assert.Equal(t, "TBD", second.Find("div.separate").Eq(1).Find("span").Eq(0).Text())
}

func TestStars(t *testing.T) {
	cases := map[float64]int{0: 0, 0.4: 0, 2.5: 3, 3.6: 4, 5: 5, 7: 5, -2: 0}
	for rating, filled := range cases {
		got := Stars(rating)
		assert.Equal(t, filled, strings.Count(got, filledStar), "rating %v", rating)
		assert.Equal(t, maxStars-filled, strings.Count(got, emptyStar), "rating %v", rating)
	}
}

func TestRenderMoviesEscapesUserText(t *testing.T) {
	movies := []models.Movie{{
		Title:       `<script>alert("x")</script>`,
		Type:        models.GenreMovie,
		Description: `"quoted" & <b>bold</b>`,
		Name:        `o'brien`,
	}}
	out := RenderMovies(movies)
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "<b>")
	assert.Contains(t, out, "&lt;script&gt;")

	doc := parseFragment(t, out)
	assert.Equal(t, 0, doc.Find("script").Length())
	title, _ := doc.Find(`input[name=title]`).Attr("value")
	assert.Equal(t, `<script>alert("x")</script>`, title)
}

func TestRenderMoviesIsDeterministic(t *testing.T) {
	movies := fixtureMovies()
	assert.Equal(t, RenderMovies(movies), RenderMovies(movies))
}

func TestTemplatesRenderEveryPage(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	data := NewPageData("Watchlist")
	data.Title = "Alien & friends"
	data.Notice = "Could not load the archive, try again."
	data.Movies = Fragment(fixtureMovies())

	for _, page := range []string{PageIndex, PageHome, PageArchive, PageRate} {
		var buf bytes.Buffer
		require.NoError(t, tmpl.ExecuteTemplate(&buf, page, data), page)
		assert.Contains(t, buf.String(), "Could not load the archive", page)
	}

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, PageArchive, data))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, 3, doc.Find(".archive fieldset").Length())
}

func TestPageDataExportLinks(t *testing.T) {
	data := NewPageData("Watchlist")
	assert.Equal(t, "/archive/export?format=csv", string(data.ExportCSV))
	assert.Equal(t, "/archive/export?format=pdf", string(data.ExportPDF))

	filters := url.Values{"watched": {"on"}}
	data.SetExportFilters(filters)
	assert.Equal(t, "/archive/export?format=pdf&watched=on", string(data.ExportPDF))
	assert.NotContains(t, filters, "format")
}

func TestStaticServesStylesheet(t *testing.T) {
	f, err := Static().Open("style.css")
	require.NoError(t, err)
	require.NoError(t, f.Close())
}
