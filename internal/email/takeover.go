package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hmcts/fact-admin/internal/lock_store"
)

const takeoverBody = `Hello,

You started editing %s at %s and did not save within the edit window.
%s has now taken over the court and is editing it.

Changes you had not saved are lost. Please contact them before making further changes.
%s`

// DefaultTakeoverQueueWait bounds how long a takeover waits for a free slot in
// the mail queue. The mail is dropped after that.
const DefaultTakeoverQueueWait = 200 * time.Millisecond

// TakeoverNotifier mails the previous holder of a court lock when it is taken over.
type TakeoverNotifier struct {
	Email     *EmailService
	APIURL    string
	QueueWait time.Duration
}

func (n *TakeoverNotifier) queueWait() time.Duration {
	if n.QueueWait > 0 {
		return n.QueueWait
	}
	return DefaultTakeoverQueueWait
}

// NotifyTakeover queues the mail for the previous holder. It runs on the
// request path, so it gives up after QueueWait when the queue is full.
func (n *TakeoverNotifier) NotifyTakeover(ctx context.Context, previous, current lock_store.CourtLock) error {
	ctx, cancel := context.WithTimeout(ctx, n.queueWait())
	defer cancel()

	link := ""
	if n.APIURL != "" {
		link = fmt.Sprintf("\n%s/v1/courts/%s/edit\n", strings.TrimSuffix(n.APIURL, "/"), current.CourtSlug)
	}

	return n.Email.NewMail(
		ctx,
		fmt.Sprintf("Your edit of %s was taken over", current.CourtSlug),
		fmt.Sprintf(
			takeoverBody,
			current.CourtSlug,
			previous.AcquiredAt.UTC().Format(time.RFC1123),
			current.UserEmail,
			link,
		),
		KeyEmailBodyPlain,
		PurposeLockTakeover,
		previous.UserEmail,
	)
}
