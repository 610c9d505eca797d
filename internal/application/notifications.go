package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-feed/internal/domain/entity"
	"github.com/oksasatya/go-social-feed/pkg/mailer"
	tpl "github.com/oksasatya/go-social-feed/pkg/mailer/templates"
)

// notifier publishes email jobs. A nil publisher turns every call into a no-op,
// and failures are only logged: notifications never fail a request.
type notifier struct {
	pub     Publisher
	appName string
	logger  *logrus.Logger
}

func (n notifier) welcome(ctx context.Context, u *entity.User) {
	data := tpl.NewWelcomeData(u.UserName, u.Email, tpl.WithAppName(n.appName), tpl.WithTime(time.Now()))
	n.publish(ctx, mailer.EmailJob{To: u.Email, Template: tpl.Welcome, Data: data})
}

func (n notifier) newComment(ctx context.Context, owner, commenter *entity.User, post *entity.Post, text string) {
	data := tpl.NewCommentData(owner.UserName, owner.Email, commenter.UserName, text, post.Text,
		tpl.WithAppName(n.appName), tpl.WithTime(time.Now()))
	n.publish(ctx, mailer.EmailJob{To: owner.Email, Template: tpl.NewComment, Data: data})
}

func (n notifier) publish(ctx context.Context, job mailer.EmailJob) {
	if n.pub == nil {
		return
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := n.pub.PublishJSON(c, job); err != nil && n.logger != nil {
		n.logger.WithError(err).WithFields(logrus.Fields{"template": job.Template, "to": job.To}).Warn("failed to publish email job")
	}
}
