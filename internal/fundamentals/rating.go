package fundamentals

import "strings"

// Rating is the consensus analyst recommendation.
type Rating string

const (
	RatingStrongBuy Rating = "strong_buy"
	RatingBuy       Rating = "buy"
	RatingHold      Rating = "hold"
	RatingSell      Rating = "sell"
	RatingUnknown   Rating = "unknown"
)

// ratingTable maps normalized recommendation keys to ratings. Keys absent
// from the table classify as RatingUnknown.
var ratingTable = map[string]Rating{
	"strong_buy":   RatingStrongBuy,
	"buy":          RatingBuy,
	"outperform":   RatingBuy,
	"hold":         RatingHold,
	"underperform": RatingSell,
	"sell":         RatingSell,
	"strong_sell":  RatingSell,
	"none":         RatingUnknown,
}

// ClassifyRating maps a source recommendation key such as "strong_buy" or
// "Strong Buy" onto a Rating.
func ClassifyRating(key string) Rating {
	k := strings.ToLower(strings.TrimSpace(key))
	k = strings.NewReplacer(" ", "_", "-", "_").Replace(k)
	if r, ok := ratingTable[k]; ok {
		return r
	}
	return RatingUnknown
}

// Label is the display name of the rating.
func (r Rating) Label() string {
	switch r {
	case RatingStrongBuy:
		return "Strong Buy"
	case RatingBuy:
		return "Buy"
	case RatingHold:
		return "Hold"
	case RatingSell:
		return "Sell"
	}
	return "Unknown"
}
