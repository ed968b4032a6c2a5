// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package quiz

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	imageTagPattern  = regexp.MustCompile(`(?is)\[AFBEELDING:\s*([^\]]+)\]`)
	bareImagePattern = regexp.MustCompile(`(?i)\[AFBEELDING\]`)
)

const stemImageDefault = "afbeelding vereist"

// stemImage strips image placeholders from a question stem and returns the
// cleaned stem and the image description. ok is false when the stem has no
// placeholder.
func stemImage(stem string) (clean, desc string, ok bool) {
	if m := imageTagPattern.FindStringSubmatch(stem); m != nil {
		clean = strings.TrimSpace(imageTagPattern.ReplaceAllString(stem, ""))
		return clean, strings.TrimSpace(m[1]), true
	}
	if bareImagePattern.MatchString(stem) {
		clean = strings.TrimSpace(bareImagePattern.ReplaceAllString(stem, ""))
		return clean, stemImageDefault, true
	}
	return stem, "", false
}

// optionImage turns an option that is an image placeholder into the
// "[Afbeelding: ...]" display text and returns the description.
func optionImage(label, text string) (display, desc string, ok bool) {
	if m := imageTagPattern.FindStringSubmatch(text); m != nil {
		desc = strings.TrimSpace(strings.ReplaceAll(m[1], "\n", " "))
	} else if bareImagePattern.MatchString(text) {
		desc = fmt.Sprintf("afbeelding voor optie %s", label)
	} else {
		return text, "", false
	}
	return fmt.Sprintf("[Afbeelding: %s]", desc), desc, true
}
