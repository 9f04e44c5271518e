package hateoas

import (
	"errors"
	"mime"
	"strings"
)

// MediaTypeHATEOAS はリンク付き表現を要求するベンダーメディアタイプです。
const MediaTypeHATEOAS = "application/vnd.companyemployees.hateoas+json"

// ErrUnsupportedMediaType は Accept ヘッダーが解釈できないか、対応する表現が無いことを示します。
var ErrUnsupportedMediaType = errors.New("hateoas: media type not supported")

// Representation はレスポンス本文の表現形式です。
type Representation int

const (
	// RepresentationShaped はフィールドを絞り込んだ JSON です。
	RepresentationShaped Representation = iota
	// RepresentationLinked は各要素とコレクションにリンクを付与した JSON です。
	RepresentationLinked
)

// Negotiate は Accept ヘッダーから表現形式を決定します。空の場合は RepresentationShaped です。
func Negotiate(accept string) (Representation, error) {
	if strings.TrimSpace(accept) == "" {
		return RepresentationShaped, nil
	}

	acceptable := false
	for _, r := range strings.Split(accept, ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(r))
		if err != nil {
			return 0, ErrUnsupportedMediaType
		}
		switch {
		case mediaType == MediaTypeHATEOAS:
			return RepresentationLinked, nil
		case isJSON(mediaType):
			acceptable = true
		}
	}

	if !acceptable {
		return 0, ErrUnsupportedMediaType
	}
	return RepresentationShaped, nil
}

func isJSON(mediaType string) bool {
	switch mediaType {
	case "*/*", "application/*", "application/json":
		return true
	}
	return strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json")
}
