package enums

import "fmt"

// DisputeReason enumerates the accepted grounds for opening a dispute.
type DisputeReason string

const (
	DisputeReasonLinkRemoved    DisputeReason = "link_removed"
	DisputeReasonContentChanged DisputeReason = "content_changed"
	DisputeReasonWrongURL       DisputeReason = "wrong_url"
	DisputeReasonNofollowAdded  DisputeReason = "nofollow_added"
	DisputeReasonTermsViolated  DisputeReason = "terms_violated"
	DisputeReasonQualityIssues  DisputeReason = "quality_issues"
	DisputeReasonDeadlineMissed DisputeReason = "deadline_missed"
	DisputeReasonOther          DisputeReason = "other"
)

var validDisputeReasons = []DisputeReason{
	DisputeReasonLinkRemoved,
	DisputeReasonContentChanged,
	DisputeReasonWrongURL,
	DisputeReasonNofollowAdded,
	DisputeReasonTermsViolated,
	DisputeReasonQualityIssues,
	DisputeReasonDeadlineMissed,
	DisputeReasonOther,
}

func (d DisputeReason) String() string {
	return string(d)
}

func (d DisputeReason) IsValid() bool {
	for _, candidate := range validDisputeReasons {
		if candidate == d {
			return true
		}
	}
	return false
}

func ParseDisputeReason(value string) (DisputeReason, error) {
	for _, candidate := range validDisputeReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dispute reason %q", value)
}

// DisputeStatus tracks whether a dispute is still awaiting an admin ruling.
type DisputeStatus string

const (
	DisputeStatusOpen     DisputeStatus = "open"
	DisputeStatusResolved DisputeStatus = "resolved"
)

func (d DisputeStatus) String() string {
	return string(d)
}

func (d DisputeStatus) IsValid() bool {
	return d == DisputeStatusOpen || d == DisputeStatusResolved
}

// DisputeResolution records who the ruling favored.
type DisputeResolution string

const (
	DisputeResolutionFavorsBuyer     DisputeResolution = "favors_buyer"
	DisputeResolutionFavorsPublisher DisputeResolution = "favors_publisher"
	DisputeResolutionSplit           DisputeResolution = "split"
)

var validDisputeResolutions = []DisputeResolution{
	DisputeResolutionFavorsBuyer,
	DisputeResolutionFavorsPublisher,
	DisputeResolutionSplit,
}

func (d DisputeResolution) String() string {
	return string(d)
}

func (d DisputeResolution) IsValid() bool {
	for _, candidate := range validDisputeResolutions {
		if candidate == d {
			return true
		}
	}
	return false
}

func ParseDisputeResolution(value string) (DisputeResolution, error) {
	for _, candidate := range validDisputeResolutions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dispute resolution %q", value)
}
