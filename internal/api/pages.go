// Copyright (c) 2026 Authgate. All rights reserved.
// Author: long.phamduy.dev@gmail.com

package api

import (
	"html/template"
	"net/http"

	"github.com/phamduylong/authgate/internal/platform/ctxutil"
)

// The page surface is intentionally minimal server-rendered HTML. Its job
// is to give the route guard real pages to protect; the product frontend
// lives elsewhere and talks to /api/auth.

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}} | Authgate</title></head>
<body>
<h1>{{.Title}}</h1>
{{if .Username}}<p>Signed in as {{.Username}}</p>{{end}}
</body>
</html>
`))

type pageData struct {
	Title    string
	Username string
}

func renderPage(writer http.ResponseWriter, request *http.Request, title string) {
	data := pageData{Title: title}
	if claims := ctxutil.GetAuthUser(request.Context()); claims != nil {
		data.Username = claims.Username
	}

	writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = pageTemplate.Execute(writer, data)
}

func handleLandingPage(writer http.ResponseWriter, request *http.Request) {
	renderPage(writer, request, "Welcome")
}

func handleSignInPage(writer http.ResponseWriter, request *http.Request) {
	renderPage(writer, request, "Sign in")
}

func handleSignUpPage(writer http.ResponseWriter, request *http.Request) {
	renderPage(writer, request, "Sign up")
}

func handleDashboardPage(writer http.ResponseWriter, request *http.Request) {
	renderPage(writer, request, "Dashboard")
}
