// Package invites holds the instructor gate and the idempotent invitation
// send. The gate guards every privileged course mutation; the send emails
// each invited address exactly once per course by diffing the invite list
// against the persisted sent set.
package invites

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	courseprivatestore "github.com/courseloop/courseloop/internal/app/store/courseprivate"
	coursestore "github.com/courseloop/courseloop/internal/app/store/courses"
	mailoutboxstore "github.com/courseloop/courseloop/internal/app/store/mailoutbox"
	"github.com/courseloop/courseloop/internal/app/system/mailer"
	"github.com/courseloop/courseloop/internal/app/system/normalize"
	"github.com/courseloop/courseloop/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ErrCourseNotFound is returned by SendInviteEmails for an unknown course.
var ErrCourseNotFound = errors.New("course not found")

// Gate answers membership questions and performs invitation sends.
type Gate struct {
	courses  *coursestore.Store
	private  *courseprivatestore.Store
	outbox   *mailoutboxstore.Store
	siteName string
	baseURL  string
	log      *zap.Logger
}

// New builds a Gate over the given database. siteName and baseURL feed the
// invitation email templates.
func New(db *mongo.Database, siteName, baseURL string, logger *zap.Logger) *Gate {
	return &Gate{
		courses:  coursestore.New(db),
		private:  courseprivatestore.New(db),
		outbox:   mailoutboxstore.New(db),
		siteName: siteName,
		baseURL:  baseURL,
		log:      logger,
	}
}

// IsCourseInstructor reports whether userID is in the course's instructor
// list. It never returns an error: a zero id, a missing course, or a lookup
// failure all read as "not an instructor", so callers can use it directly as
// a guard before privileged mutations.
func (g *Gate) IsCourseInstructor(ctx context.Context, courseID, userID primitive.ObjectID) bool {
	if courseID.IsZero() || userID.IsZero() {
		return false
	}
	ok, err := g.courses.HasInstructor(ctx, courseID, userID)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			g.log.Warn("instructor check failed",
				zap.String("course_id", courseID.Hex()),
				zap.Error(err))
		}
		return false
	}
	return ok
}

// SendInviteEmails enqueues one invitation email for every invited address
// not yet in the sent set, then records the successfully enqueued addresses
// as sent. It returns the number of emails newly enqueued; zero with a nil
// error means there was nothing to send.
//
// Each (course, address) pair is emailed at most once, even under concurrent
// invocation: the outbox key is derived from the pair, so a send that read a
// stale sent list hits the unique key index instead of enqueueing a second
// copy. Re-invoking with an unchanged invite list sends nothing. If some
// enqueues fail, the addresses that did get enqueued are still recorded as
// sent and the remainder goes out on the next invocation.
func (g *Gate) SendInviteEmails(ctx context.Context, courseID primitive.ObjectID) (int, error) {
	course, err := g.courses.GetByID(ctx, courseID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, ErrCourseNotFound
		}
		return 0, fmt.Errorf("load course: %w", err)
	}

	priv, err := g.private.Get(ctx, courseID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, nil // no invite list configured yet
		}
		return 0, fmt.Errorf("load private fields: %w", err)
	}

	pending := pendingAddresses(priv.InvitedEmails, priv.SentEmails)
	if len(pending) == 0 {
		return 0, nil
	}

	email := mailer.BuildInviteEmail(mailer.InviteEmailData{
		SiteName:    g.siteName,
		CourseTitle: course.Title,
		Subject:     priv.MailSubject,
		Text:        priv.MailText,
		JoinURL:     g.joinURL(courseID),
	})

	recorded := make([]string, 0, len(pending))
	fresh := 0
	var firstErr error
	for _, addr := range pending {
		msg := models.OutboxMessage{
			Key:      outboxKey(courseID, addr),
			CourseID: courseID,
			To:       addr,
			Subject:  email.Subject,
			TextBody: email.TextBody,
			HTMLBody: email.HTMLBody,
		}
		if _, err := g.outbox.Enqueue(ctx, msg); err != nil {
			if wafflemongo.IsDup(err) {
				// A concurrent send, or an earlier one cut off before it
				// recorded sent_emails, already enqueued this address.
				// Record it as sent without counting or emailing it again.
				recorded = append(recorded, addr)
				continue
			}
			if firstErr == nil {
				firstErr = fmt.Errorf("enqueue invite for %s: %w", addr, err)
			}
			continue
		}
		recorded = append(recorded, addr)
		fresh++
	}

	// Only addresses with an outbox document may enter sent_emails; anything
	// else stays in the pending difference for the next call.
	if len(recorded) > 0 {
		if err := g.private.MarkSent(ctx, courseID, recorded); err != nil {
			// The messages are already in the outbox. Surface the error so
			// the caller retries; the retry's enqueues hit the outbox keys
			// and only the sent_emails record is redone.
			return fresh, fmt.Errorf("record sent emails: %w", err)
		}
	}

	g.log.Info("invite emails enqueued",
		zap.String("course_id", courseID.Hex()),
		zap.Int("count", fresh))
	return fresh, firstErr
}

// outboxKey names an invitation by (course, normalized address). The unique
// key index on the outbox makes the enqueue the atomic claim for the pair,
// so two sends racing past the same sent_emails read cannot both email an
// address.
func outboxKey(courseID primitive.ObjectID, addr string) string {
	return "invite:" + courseID.Hex() + ":" + addr
}

// pendingAddresses computes invited \ sent over normalized addresses,
// preserving the invite-list order for stable batches.
func pendingAddresses(invited, sent []string) []string {
	sentSet := make(map[string]struct{}, len(sent))
	for _, e := range sent {
		sentSet[normalize.Email(e)] = struct{}{}
	}

	seen := make(map[string]struct{}, len(invited))
	var out []string
	for _, e := range invited {
		n := normalize.Email(e)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		if _, done := sentSet[n]; !done {
			out = append(out, n)
		}
	}
	return out
}

func (g *Gate) joinURL(courseID primitive.ObjectID) string {
	return g.baseURL + "/courses/" + url.PathEscape(courseID.Hex())
}
