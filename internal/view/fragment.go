package view

import (
	"html"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/watchlist/internal/models"
)

const (
	dateLayout     = "Jan 2, 2006"
	pendingDate    = "TBD"
	maxStars       = 5
	filledStar     = "&starf;"
	emptyStar      = "&star;"
	fallbackColour = "inherit"
)

var statusColours = map[models.WatchStatus]string{
	models.StatusNotWatched: "#ff6961",
	models.StatusWatching:   "#ca5cdd",
	models.StatusWatched:    "#77dd77",
}

// StatusColour returns the legend colour for a watch status.
func StatusColour(status models.WatchStatus) string {
	if c, ok := statusColours[status]; ok {
		return c
	}
	return fallbackColour
}

// Stars renders round(rating) filled stars followed by empty ones, always five
// symbols in total.
func Stars(rating float64) string {
	filled := int(math.Round(rating))
	if math.IsNaN(rating) || filled < 0 {
		filled = 0
	}
	if filled > maxStars {
		filled = maxStars
	}
	return strings.Repeat(filledStar, filled) + strings.Repeat(emptyStar, maxStars-filled)
}

// RenderMovies turns records into the archive fragment: per record a hidden
// rating form followed by its display block, in input order. Every user
// supplied value is escaped.
func RenderMovies(movies []models.Movie) string {
	var b strings.Builder
	for i, m := range movies {
		formID := "rate-" + strconv.Itoa(i)
		submittedOn := formatDate(m.SubmittedOn)
		watchedOn := pendingDate
		if m.WatchedOn != nil && !m.WatchedOn.IsZero() {
			watchedOn = formatDate(*m.WatchedOn)
		}
		rating := strconv.FormatFloat(m.Rating, 'f', -1, 64)

		b.WriteString(`<form action="/rate" method="post" id="` + formID + `">`)
		writeHidden(&b, "title", m.Title)
		writeHidden(&b, "type", string(m.Type))
		writeHidden(&b, "description", m.Description)
		writeHidden(&b, "name", m.Name)
		writeHidden(&b, "submitted_on", submittedOn)
		writeHidden(&b, "watched", strconv.Itoa(int(m.Watched)))
		writeHidden(&b, "rating", rating)
		b.WriteString(`</form>`)

		b.WriteString(`<fieldset class="mukta-regular">`)
		b.WriteString(`<legend><a id="a-archive" onclick="document.getElementById('` + formID + `').submit();" style="color:` + StatusColour(m.Watched) + `">`)
		b.WriteString(html.EscapeString(m.Title))
		b.WriteString(`</a> (` + html.EscapeString(string(m.Type)) + `)</legend>`)
		b.WriteString(html.EscapeString(m.Description) + `<br><hr>`)
		b.WriteString(`<div class="separate"><span class="tooltip">` + Stars(m.Rating) + ` <span class="tooltiptext">` + rating + `</span></span><br><span>` + html.EscapeString(m.Name) + `</span></div>`)
		b.WriteString(`<div class="separate"><span>` + watchedOn + `</span><br><span>` + submittedOn + `</span></div>`)
		b.WriteString(`</fieldset><br>`)
	}
	return b.String()
}

func writeHidden(b *strings.Builder, name, value string) {
	b.WriteString(`<input type="hidden" name="` + name + `" value="` + html.EscapeString(value) + `">`)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
