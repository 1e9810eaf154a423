package server

import (
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// spaHandler serves the web app. The board list ("/") and a board page
// ("/board/{boardID}") get index.html and the client renders them; real
// files are served as-is; any other path redirects to the board list.
func spaHandler(assets fs.FS) http.Handler {
	fileServer := http.FileServerFS(assets)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")

		switch {
		case name == "" || isBoardPage(name):
			http.ServeFileFS(w, r, assets, "index.html")
		case isFile(assets, name):
			fileServer.ServeHTTP(w, r)
		default:
			http.Redirect(w, r, "/", http.StatusFound)
		}
	})
}

func isBoardPage(name string) bool {
	id, ok := strings.CutPrefix(name, "board/")
	return ok && id != "" && !strings.Contains(id, "/")
}

func isFile(assets fs.FS, name string) bool {
	info, err := fs.Stat(assets, name)
	return err == nil && !info.IsDir()
}
