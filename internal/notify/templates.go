package notify

import (
	"fmt"

	"github.com/joseph-ayodele/estatehub/constants"
)

// VerificationMessage builds the status email sent after a review.
func VerificationMessage(to, displayName string, status constants.VerificationStatus, note string) Message {
	msg := Message{To: to, Template: "verification_" + string(status)}
	switch status {
	case constants.VerificationVerified:
		msg.Subject = "Your profile is verified"
		msg.Body = fmt.Sprintf("Hi %s,\n\nYour profile has been verified. You now have full access to the marketplace.", displayName)
	case constants.VerificationRejected:
		msg.Subject = "Your profile verification needs attention"
		msg.Body = fmt.Sprintf("Hi %s,\n\nWe could not verify your profile.", displayName)
		if note != "" {
			msg.Body += "\n\nReviewer note: " + note
		}
		msg.Body += "\n\nYou can upload new documents and resubmit from your profile page."
	default:
		msg.Subject = "Your profile is under review"
		msg.Body = fmt.Sprintf("Hi %s,\n\nYour profile was submitted for verification.", displayName)
	}
	return msg
}
