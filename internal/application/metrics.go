package application

import "expvar"

// Counters published at /debug/vars.
var (
	metricLogins        = expvar.NewInt("auth_logins")
	metricTokensRevoked = expvar.NewInt("auth_tokens_revoked")
	metricPostsCreated  = expvar.NewInt("feed_posts_created")
	metricLikesToggled  = expvar.NewInt("feed_likes_toggled")
	metricCommentsAdded = expvar.NewInt("feed_comments_added")
	metricPostsDeleted  = expvar.NewInt("feed_posts_deleted")
)
