// Command readview fetches a page, extracts the readable article and prints
// it as markdown, HTML or a metadata record.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"

	"github.com/textread/readview"
)

var (
	output   string
	baseURL  string
	template string
	check    bool
	metaOnly bool
	verbose  bool
)

func handle(err error) {
	if err != nil {
		exit(err.Error())
	}
}

func exit(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}

func readSource(arg string) (io.ReadCloser, string) {
	if arg == "" || arg == "-" {
		return os.Stdin, ""
	}
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		resp, err := http.Get(arg)
		handle(err)
		if resp.StatusCode != http.StatusOK {
			exit(fmt.Sprintf("fetching %s: %s", arg, resp.Status))
		}
		return resp.Body, arg
	}
	f, err := os.Open(arg)
	handle(err)
	return f, ""
}

func printMetadata(meta *readview.Metadata, readerable bool) {
	if meta.Title != "" {
		fmt.Printf("Title: %s\n", meta.Title)
	}
	if meta.Byline != "" {
		fmt.Printf("Byline: %s\n", meta.Byline)
	}
	if meta.Excerpt != "" {
		fmt.Printf("Excerpt: %s\n", meta.Excerpt)
	}
	if readerable {
		fmt.Println("Readerable: Yes")
	} else {
		fmt.Println("Readerable: No")
	}
	if meta.SiteName != "" {
		fmt.Printf("Site name: %s\n", meta.SiteName)
	}
	switch meta.Dir {
	case "ltr":
		fmt.Println("Text direction: Left to right")
	case "rtl":
		fmt.Println("Text direction: Right to left")
	}
}

func main() {
	flag.StringVar(&output, "o", "markdown", "output format: 'markdown' or 'html'")
	flag.StringVar(&baseURL, "u", "", "base URL for resolving relative links")
	flag.StringVar(&template, "T", "", "comma-separated metadata fields to include in the article")
	flag.BoolVar(&check, "c", false, "only check if the document looks readerable")
	flag.BoolVar(&metaOnly, "M", false, "print the metadata record instead of the article")
	flag.BoolVar(&verbose, "v", false, "enable logs")
	flag.Parse()

	if !verbose {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	}

	src, docURL := readSource(flag.Arg(0))
	defer src.Close()

	doc, err := html.Parse(src)
	handle(err)

	if check {
		if readview.Readerable(doc) {
			fmt.Println("Readerable: Yes")
			return
		}
		fmt.Println("Readerable: No")
		os.Exit(1)
	}

	base := baseURL
	if base == "" {
		base = docURL
	}

	opts := []readview.Option{
		readview.BaseURL(base),
		readview.DocumentURL(docURL),
	}
	if template != "" {
		opts = append(opts, readview.Template(strings.Split(template, ",")...))
	}

	if metaOnly {
		// The verdict must come first: Extract consumes the document.
		readerable := readview.Readerable(doc)
		article, err := readview.Extract(doc, opts...)
		if err != nil {
			// No article, but the meta tags may still be worth printing.
			printMetadata(readview.HarvestMetadata(doc), readerable)
			return
		}
		printMetadata(&article.Metadata, readerable)
		return
	}

	article, err := readview.Extract(doc, opts...)
	handle(err)

	var rendered strings.Builder
	handle(html.Render(&rendered, article.Node))

	if output == "html" {
		fmt.Println(rendered.String())
		return
	}

	markdown, err := htmltomarkdown.ConvertString(rendered.String())
	handle(err)
	fmt.Println(markdown)
}
