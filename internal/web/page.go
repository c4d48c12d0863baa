package web

//go:generate go tool templ generate -f page.templ

// PageProps are the values rendered into the index page
type PageProps struct {
	Title            string
	WorkingDirectory string
	Model            string
}
