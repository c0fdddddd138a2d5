package enums

import "fmt"

// OrderType distinguishes who supplies the article content.
type OrderType string

const (
	OrderTypeGuestPost     OrderType = "guest_post"
	OrderTypeLinkInsertion OrderType = "link_insertion"
)

// ContentSource identifies the origin of the article copy.
type ContentSource string

const (
	ContentSourceBuyer     ContentSource = "buyer"
	ContentSourcePublisher ContentSource = "publisher"
)

var validOrderTypes = []OrderType{
	OrderTypeGuestPost,
	OrderTypeLinkInsertion,
}

var validContentSources = []ContentSource{
	ContentSourceBuyer,
	ContentSourcePublisher,
}

func (o OrderType) String() string {
	return string(o)
}

func (o OrderType) IsValid() bool {
	for _, candidate := range validOrderTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

func ParseOrderType(value string) (OrderType, error) {
	for _, candidate := range validOrderTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order type %q", value)
}

func (c ContentSource) String() string {
	return string(c)
}

func (c ContentSource) IsValid() bool {
	for _, candidate := range validContentSources {
		if candidate == c {
			return true
		}
	}
	return false
}

func ParseContentSource(value string) (ContentSource, error) {
	for _, candidate := range validContentSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid content source %q", value)
}
