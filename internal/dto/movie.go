package dto

import "net/url"

// ArchiveForm mirrors the archive search form. Checkbox fields carry "on" when
// ticked and are absent otherwise.
type ArchiveForm struct {
	Search string `form:"search" json:"search"`
	Sort   string `form:"sort" json:"sort"`

	Animated    string `form:"animated" json:"animated"`
	Documentary string `form:"documentary" json:"documentary"`
	Movie       string `form:"movie" json:"movie"`
	Reality     string `form:"reality" json:"reality"`
	Series      string `form:"series" json:"series"`

	NotWatched string `form:"not_watched" json:"not_watched"`
	Watching   string `form:"watching" json:"watching"`
	Watched    string `form:"watched" json:"watched"`
}

// Values re-encodes the submitted filters, skipping empty fields, so the same
// selection can be carried into a link.
func (f ArchiveForm) Values() url.Values {
	values := url.Values{}
	for key, value := range map[string]string{
		"search":      f.Search,
		"sort":        f.Sort,
		"animated":    f.Animated,
		"documentary": f.Documentary,
		"movie":       f.Movie,
		"reality":     f.Reality,
		"series":      f.Series,
		"not_watched": f.NotWatched,
		"watching":    f.Watching,
		"watched":     f.Watched,
	} {
		if value != "" {
			values.Set(key, value)
		}
	}
	return values
}

// SubmitMovieRequest is posted from the home page to add a title.
type SubmitMovieRequest struct {
	Title       string `form:"title" json:"title" validate:"required,max=300"`
	Type        string `form:"type" json:"type" validate:"required,oneof=animated documentary movie reality series"`
	Description string `form:"description" json:"description" validate:"max=5000"`
	Name        string `form:"name" json:"name" validate:"max=120"`
}

// RateMovieRequest is posted from the rating page.
type RateMovieRequest struct {
	Title   string `form:"title" json:"title" validate:"required"`
	Rating  string `form:"rating" json:"rating"`
	Watched string `form:"watched" json:"watched"`
}

// RatePageRequest carries the hidden fields of an archive entry's action form.
type RatePageRequest struct {
	Title       string `form:"title"`
	Type        string `form:"type"`
	Description string `form:"description"`
	Name        string `form:"name"`
	SubmittedOn string `form:"submitted_on"`
	Watched     string `form:"watched"`
	Rating      string `form:"rating"`
}

// LoginRequest is the single-field password form.
type LoginRequest struct {
	Password string `form:"password" json:"password"`
}

// LoginResponse is returned by the JSON login endpoint.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}
