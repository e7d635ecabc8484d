package thumbnail

import (
	"fmt"
	"net/url"
	"strings"
)

const YouTubeImageBase = "https://img.youtube.com/vi"

// best resolution first
var youTubeVariants = []string{
	"maxresdefault.jpg",
	"sddefault.jpg",
	"hqdefault.jpg",
	"mqdefault.jpg",
	"0.jpg",
}

// YouTubeID extracts the video ID from a youtu.be or youtube.com link. Values that are not
// URLs at all are assumed to already be an ID.
func YouTubeID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}
	host := strings.ToLower(u.Hostname())
	switch {
	case strings.Contains(host, "youtu.be"):
		return strings.Trim(u.Path, "/")
	case strings.Contains(host, "youtube.com"):
		if v := u.Query().Get("v"); v != "" {
			return v
		}
		// embed and shorts links carry the id as the last path segment
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) == 2 && (parts[0] == "embed" || parts[0] == "shorts") {
			return parts[1]
		}
	}
	return ""
}

func YouTubeCandidates(base string, verification string) []string {
	id := YouTubeID(verification)
	if id == "" {
		return nil
	}
	if base == "" {
		base = YouTubeImageBase
	}
	base = strings.TrimRight(base, "/")
	out := make([]string, 0, len(youTubeVariants))
	for _, v := range youTubeVariants {
		out = append(out, fmt.Sprintf("%s/%s/%s", base, url.PathEscape(id), v))
	}
	return out
}

func YouTubeEmbedURL(verification string) string {
	id := YouTubeID(verification)
	if id == "" {
		return ""
	}
	return "https://www.youtube.com/embed/" + url.PathEscape(id)
}
