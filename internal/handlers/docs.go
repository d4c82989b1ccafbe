package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/russross/blackfriday/v2"
)

// DocsHandler serves project Markdown documentation as HTML
type DocsHandler struct{}

// NewDocsHandler creates a new docs handler
func NewDocsHandler() *DocsHandler {
	return &DocsHandler{}
}

// Only these documents are reachable through the endpoint
var allowedDocs = map[string]string{
	"README": "README.md",
	"API":    "API.md",
}

// ServeMarkdownAsHTML handles GET /doc/:doc
func (h *DocsHandler) ServeMarkdownAsHTML(c *gin.Context) {
	docName := c.Param("doc")
	fileName, exists := allowedDocs[docName]
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	content, err := os.ReadFile(filepath.Join(".", fileName))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	extensions := blackfriday.CommonExtensions | blackfriday.AutoHeadingIDs
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.CommonHTMLFlags,
	})
	htmlContent := blackfriday.Run(content, blackfriday.WithRenderer(renderer), blackfriday.WithExtensions(extensions))

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, wrapDocPage(string(htmlContent), docTitle(docName)))
}

func docTitle(docName string) string {
	switch docName {
	case "README":
		return "Project Overview"
	case "API":
		return "API Reference"
	}
	return strings.ReplaceAll(docName, "_", " ")
}

func wrapDocPage(content, title string) string {
	return `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>` + title + ` - truthscan</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            line-height: 1.6;
            color: #333;
            background: #f8f9fa;
            padding: 20px;
        }
        .content {
            max-width: 900px;
            margin: 0 auto;
            background: white;
            padding: 3rem;
            border-radius: 12px;
            border: 1px solid #e5e7eb;
        }
        .content pre {
            background: #f3f4f6;
            border-radius: 8px;
            padding: 1rem;
            overflow-x: auto;
        }
        .content code {
            font-family: 'Menlo', 'Monaco', monospace;
            font-size: 0.9rem;
        }
        .content a { color: #2563eb; }
    </style>
</head>
<body>
    <div class="content">
        <h1>` + title + `</h1>
        ` + content + `
    </div>
</body>
</html>`
}
