package server

import (
	"html/template"
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

const defaultMimeType = "application/octet-stream"

var mimeTypes = map[string]string{
	".html": "text/html",
	".css":  "text/css",
	".js":   "text/javascript",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
	".txt":  "text/plain",
	".json": "application/json",
}

func mimeType(name string) string {
	if t, ok := mimeTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return t
	}
	return defaultMimeType
}

var notFoundPage = template.Must(template.New("404").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>404 - Not Found</title>
    <style>
        body {
            font-family: 'MS Sans Serif', sans-serif;
            background: #008080;
            color: white;
            text-align: center;
            padding: 50px;
        }
        .error-window {
            background: #c0c0c0;
            color: black;
            border: 2px solid;
            border-color: #dfdfdf #808080 #808080 #dfdfdf;
            padding: 20px;
            max-width: 400px;
            margin: 0 auto;
        }
        .error-header {
            background: #000080;
            color: white;
            margin: -20px -20px 20px -20px;
            padding: 8px;
            font-weight: bold;
        }
        button {
            background: #c0c0c0;
            border: 2px solid;
            border-color: #dfdfdf #808080 #808080 #dfdfdf;
            padding: 4px 12px;
            cursor: pointer;
        }
    </style>
</head>
<body>
    <div class="error-window">
        <div class="error-header">Error - File Not Found</div>
        <p><strong>404 - Page Not Found</strong></p>
        <p>The file "{{.}}" could not be found on this server.</p>
        <button onclick="history.back()">Go Back</button>
    </div>
</body>
</html>
`))

// resolve maps a URL path to a file under root. The path is cleaned as if
// rooted at "/" so ".." can never climb above root.
func resolve(root, urlPath string) (display, file string) {
	display = path.Clean("/" + urlPath)
	if display == "/" {
		display = "/index.html"
	} else if strings.HasSuffix(urlPath, "/") {
		display += "/index.html"
	}
	return display, filepath.Join(root, filepath.FromSlash(display))
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	display, file := resolve(s.StaticDir, r.URL.Path)

	info, err := os.Stat(file)
	if err == nil && info.IsDir() {
		file = filepath.Join(file, "index.html")
		info, err = os.Stat(file)
	}
	if err != nil || info.IsDir() {
		s.notFound(w, display)
		return
	}
	s.serveFile(w, file)
}

func (s *Server) serveFile(w http.ResponseWriter, file string) {
	data, err := os.ReadFile(file)
	if err != nil {
		log.Printf("[ERROR] read %s: %v", file, err)
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
		return
	}
	w.Header().Set("Content-Type", mimeType(file))
	w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(s.CacheMaxAge))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) notFound(w http.ResponseWriter, display string) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusNotFound)
	if err := notFoundPage.Execute(w, display); err != nil {
		log.Printf("[ERROR] render 404 page: %v", err)
	}
}
