// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// parseTemplates loads the embedded page templates. The url function
// resolves named routes, so templates never hard-code paths.
func parseTemplates() (*template.Template, error) {
	return template.New("polls").
		Funcs(template.FuncMap{"url": Reverse}).
		ParseFS(templateFS, "templates/*.html")
}
