package generator

import (
	"fmt"
	"strings"
)

const systemPrompt = "You are a LinkedIn content strategist. You write posts " +
	"that sound like a real practitioner, not a marketing department. Follow " +
	"the output format exactly."

// BuildPrompt renders a generation request into the single natural-language
// prompt sent to the model. The output format instructions must stay in sync
// with the delimiters in parser.go.
func BuildPrompt(req Request, articles []Article) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write %d distinct LinkedIn posts about: %s\n", req.NumPosts, req.Topic)
	if req.Industry != "" {
		fmt.Fprintf(&b, "The author works in the %s industry, frame the posts accordingly.\n", req.Industry)
	}
	fmt.Fprintf(&b, "Tone: %s. Point of view: %s.\n", req.Tone, req.Pov)

	if req.WritingSample != "" {
		b.WriteString("\nMatch the style of this writing sample:\n")
		b.WriteString(req.WritingSample)
		b.WriteString("\n")
	}

	if len(articles) > 0 {
		b.WriteString("\nGround the posts in these recent articles:\n")
		for _, a := range articles {
			fmt.Fprintf(&b, "- %s", a.Title)
			if a.Snippet != "" {
				fmt.Fprintf(&b, ": %s", a.Snippet)
			}
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "\nOutput format: separate each post with a line containing only %s. ", PostDelimiter)
	fmt.Fprintf(&b, "Start each post with a strong hook on its own first line. ")
	fmt.Fprintf(&b, "After each post body, add a line containing only %s followed by 3-5 relevant hashtags.", HashtagsDelimiter)
	if req.WritingSample != "" {
		fmt.Fprintf(&b, " Finally, add a line containing only %s followed by a short analysis of the writing sample's style.", StyleDelimiter)
	}

	return b.String()
}
