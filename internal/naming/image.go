package naming

import (
	"fmt"

	"github.com/distribution/reference"
)

// ParseImage splits a full image reference into the registry, repository and
// version fields the chart expects. Short references are normalized, so
// "nginx:1.27" becomes docker.io/library/nginx with version 1.27. A reference
// carrying both a tag and a digest keeps the digest.
func ParseImage(ref string) (Image, error) {
	named, err := reference.ParseNormalizedNamed(ref)
	if err != nil {
		return Image{}, fmt.Errorf("invalid image reference %q: %w", ref, err)
	}

	img := Image{
		Registry:   reference.Domain(named),
		Repository: reference.Path(named),
	}
	if digested, ok := named.(reference.Digested); ok {
		img.Version = digested.Digest().String()
	} else if tagged, ok := named.(reference.Tagged); ok {
		img.Version = tagged.Tag()
	}
	return img, nil
}

// ValidateImage checks that the formatted reference of img is a well-formed
// image reference.
func ValidateImage(img Image) error {
	ref := ImageReference(img)
	if _, err := reference.ParseNormalizedNamed(ref); err != nil {
		return fmt.Errorf("image %q is not a valid reference: %w", ref, err)
	}
	return nil
}
