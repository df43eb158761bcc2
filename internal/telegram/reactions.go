package telegram

import "github.com/go-telegram/bot/models"

// Emoji polarity for reaction counting. Telegram sends the bare heart
// without the variation selector; both spellings are listed to be safe.
var positiveEmojis = map[string]bool{
	"👍":  true,
	"❤":  true,
	"❤️": true,
	"🔥":  true,
	"🎉":  true,
	"🤩":  true,
	"😍":  true,
	"💯":  true,
	"👏":  true,
	"❤‍🔥": true,
}

var negativeEmojis = map[string]bool{
	"👎": true,
	"💩": true,
	"🤮": true,
	"😡": true,
	"🤬": true,
	"💔": true,
}

// emojiOf extracts the plain emoji from a reaction, empty for custom or
// paid reactions (those are not classified).
func emojiOf(r models.ReactionType) string {
	if r.ReactionTypeEmoji == nil {
		return ""
	}
	return r.ReactionTypeEmoji.Emoji
}

// reactionDeltas diffs the old and new reaction lists of one user and
// returns signed deltas for the positive and negative counters. Removing
// more than was added stays safe: the store clamps at zero.
func reactionDeltas(oldReactions, newReactions []models.ReactionType) (positiveDelta, negativeDelta int) {
	counts := make(map[string]int)
	for _, r := range newReactions {
		if e := emojiOf(r); e != "" {
			counts[e]++
		}
	}
	for _, r := range oldReactions {
		if e := emojiOf(r); e != "" {
			counts[e]--
		}
	}

	for emoji, delta := range counts {
		switch {
		case positiveEmojis[emoji]:
			positiveDelta += delta
		case negativeEmojis[emoji]:
			negativeDelta += delta
		}
	}
	return positiveDelta, negativeDelta
}
