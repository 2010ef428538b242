package format

import (
	"fmt"
	"time"
)

// TimestampLayout renders as e.g. "03-14 09:26 PM".
const TimestampLayout = "01-02 03:04 PM"

// Message renders a chat line for display: "sender: text [timestamp]".
func Message(sender string, text string, at time.Time) string {
	return fmt.Sprintf("%s: %s [%s]", sender, text, at.Format(TimestampLayout))
}
