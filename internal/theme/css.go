package theme

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

//go:embed css/*.css
var embeddedCSS embed.FS

// importRegex matches @import "file.css"; or @import 'file.css'; or @import url("file.css");
var importRegex = regexp.MustCompile(`@import\s+(?:url\s*\(\s*)?["']([^"']+)["']\s*\)?;?`)

// classRegex matches characters not allowed in a CSS class name.
var classRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// BaseCSS returns the structural stylesheet shared by every theme.
func BaseCSS() string {
	css, _ := embeddedPartial("_base.css")
	return css
}

func embeddedPartial(name string) (string, bool) {
	if !strings.HasPrefix(name, "_") {
		name = "_" + name
	}
	if !strings.HasSuffix(name, ".css") {
		name += ".css"
	}
	data, err := embeddedCSS.ReadFile("css/" + name)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// ClassName returns the CSS class that scopes a per-popup theme override.
func ClassName(name string) string {
	return "theme-" + strings.ToLower(classRegex.ReplaceAllString(name, "-"))
}

// Rules renders the theme's colours as CSS rules under selector.
func (t *Theme) Rules(selector string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s { background-color: %s; }\n", selector, t.Panel)
	fmt.Fprintf(&b, "%s .toast-title { color: %s; }\n", selector, t.Title)
	fmt.Fprintf(&b, "%s .toast-text { color: %s; }\n", selector, t.Text)
	fmt.Fprintf(&b, "%s .toast-close { color: %s; background: none; border: none; box-shadow: none; }\n", selector, t.Close)
	fmt.Fprintf(&b, "%s .toast-close.hover { color: %s; }\n", selector, t.CloseHover)
	fmt.Fprintf(&b, "%s progressbar progress { background-color: %s; border: none; }\n", selector, t.Progress)
	fmt.Fprintf(&b, "%s progressbar trough { background-color: %s; border: none; }\n", selector, t.Panel)
	if t.ExtraCSS != "" {
		b.WriteString(t.ExtraCSS)
		b.WriteString("\n")
	}
	return b.String()
}

// Stylesheet renders the theme as the default popup style.
func (t *Theme) Stylesheet() string {
	return BaseCSS() + "\n" + t.Rules(".toast")
}

// Stylesheet renders a complete stylesheet: the base rules, def as the
// default style, and every override scoped to its ClassName.
func Stylesheet(def *Theme, overrides ...*Theme) string {
	var b strings.Builder
	b.WriteString(def.Stylesheet())
	for _, t := range overrides {
		if t == nil || t.Name == def.Name {
			continue
		}
		b.WriteString(t.Rules(".toast." + ClassName(t.Name)))
	}
	return b.String()
}

// ProcessImports resolves and inlines @import statements in CSS.
// Imports are resolved relative to baseDir, falling back to the embedded
// partials for names starting with an underscore.
// The seen map prevents circular imports.
func ProcessImports(css string, baseDir string, seen map[string]bool) string {
	if seen == nil {
		seen = make(map[string]bool)
	}

	return importRegex.ReplaceAllStringFunc(css, func(match string) string {
		submatch := importRegex.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}

		importPath := submatch[1]
		fullPath := importPath
		if !filepath.IsAbs(importPath) {
			fullPath = filepath.Join(baseDir, importPath)
		}

		if seen[fullPath] {
			return "/* circular import prevented: " + importPath + " */"
		}
		seen[fullPath] = true

		imported, err := os.ReadFile(fullPath)
		if err != nil {
			baseName := filepath.Base(importPath)
			if strings.HasPrefix(baseName, "_") {
				if partial, found := embeddedPartial(baseName); found {
					return "/* imported (embedded): " + importPath + " */\n" + partial
				}
			}
			return "/* import failed: " + importPath + " - " + err.Error() + " */"
		}

		processed := ProcessImports(string(imported), filepath.Dir(fullPath), seen)
		return "/* imported: " + importPath + " */\n" + processed
	})
}
