package tool_webfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/marmotcli/marmot/src/agent"
	"github.com/marmotcli/marmot/src/marmotagent/toolsutil"
)

// Tool name constant
const Name = "web_fetch"

const webFetchPrompt = `Fetches content from a URL and returns it in the requested format.

Usage:
- Provide a http:// or https:// URL
- format is one of: text, markdown, html (default text)
- HTML pages are converted to plain text or markdown; other content is returned as is
- Responses larger than 5MB are truncated`

const maxResponseSize = 5 * 1024 * 1024

// WebFetchTool downloads web content for the model.
type WebFetchTool struct {
	client *http.Client
}

func New(timeout time.Duration) *WebFetchTool {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &WebFetchTool{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
	}
}

func (t *WebFetchTool) Schema() agent.ToolSchema {
	return agent.ToolSchema{
		Name:        Name,
		Description: webFetchPrompt,
		Parameters: []agent.ToolParameter{
			{Name: "url", Type: agent.TypeString, Description: "The URL to fetch content from", Required: true},
			{Name: "format", Type: agent.TypeString, Description: "The format to return the content in (text, markdown, or html)", Default: "text"},
		},
	}
}

func (t *WebFetchTool) Execute(ctx context.Context, args map[string]any) (*agent.ToolResult, error) {
	url, ok := toolsutil.StringArg(args, "url")
	if !ok {
		return agent.Fail("missing required parameter: url"), nil
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return agent.Fail("URL must start with http:// or https://"), nil
	}

	format, _ := toolsutil.StringArg(args, "format")
	format = strings.ToLower(format)
	if format == "" {
		format = "text"
	}
	if format != "text" && format != "markdown" && format != "html" {
		return agent.Fail("format must be one of: text, markdown, html"), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return agent.Fail(fmt.Sprintf("failed to create request: %v", err)), nil
	}
	req.Header.Set("User-Agent", "marmot/1.0")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := t.client.Do(req)
	if err != nil {
		return agent.Fail(fmt.Sprintf("failed to fetch URL: %v", err)), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return agent.Fail(fmt.Sprintf("request failed with status code: %d", resp.StatusCode)), nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return agent.Fail(fmt.Sprintf("failed to read response: %v", err)), nil
	}

	content := string(body)
	contentType := resp.Header.Get("Content-Type")
	isHTML := strings.Contains(contentType, "text/html")

	var processed string
	switch format {
	case "text":
		if isHTML {
			text, err := extractTextFromHTML(content)
			if err != nil {
				toolsutil.GetLogger().Warn("failed to extract text from HTML, returning raw content", "error", err)
				processed = content
			} else {
				processed = text
			}
		} else {
			processed = content
		}
	case "markdown":
		if isHTML {
			markdown, err := convertHTMLToMarkdown(content)
			if err != nil {
				toolsutil.GetLogger().Warn("failed to convert HTML to markdown, wrapping in code block", "error", err)
				processed = "```html\n" + content + "\n```"
			} else {
				processed = markdown
			}
		} else if strings.Contains(contentType, "application/json") {
			processed = "```json\n" + content + "\n```"
		} else {
			processed = "```\n" + content + "\n```"
		}
	default:
		processed = content
	}

	toolsutil.GetLogger().Info("fetched web content", "url", url, "status", resp.StatusCode, "size", len(body), "format", format)

	result := agent.Ok(toolsutil.TruncateOutput(processed))
	result.Metadata = map[string]any{
		"url":          resp.Request.URL.String(),
		"status_code":  resp.StatusCode,
		"content_type": contentType,
		"format":       format,
	}
	return result, nil
}

// extractTextFromHTML extracts plain text from HTML content
func extractTextFromHTML(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	lines := strings.Split(doc.Text(), "\n")
	var cleaned []string
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return strings.Join(cleaned, "\n"), nil
}

// convertHTMLToMarkdown converts HTML content to Markdown
func convertHTMLToMarkdown(html string) (string, error) {
	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}

	markdown = strings.TrimSpace(markdown)
	markdown = strings.ReplaceAll(markdown, "\n\n\n", "\n\n")
	return markdown, nil
}
