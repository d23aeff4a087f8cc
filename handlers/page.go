package handlers

import (
	"embed"
	"go-reviewlens/session"
	"go-reviewlens/types"
	"html/template"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

const sessionCookie = "reviewlens_session"

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates for gin's HTML renderer.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

type pageData struct {
	Categories       []types.Category
	Category         types.Category
	Review           string
	Idle             bool
	SentimentEnabled bool
	Sentiment        string
	SentimentHTML    template.HTML
	SentimentNotice  string
	Entities         []types.Entity
	EntitiesShown    bool
	EntitiesNotice   string
	Warnings         []string
}

// loadSession resolves the visitor's session from the cookie, issuing a new
// cookie when needed.
func loadSession(c *gin.Context, env *Env) *session.Session {
	id, _ := c.Cookie(sessionCookie)
	s, created := env.Sessions.Get(id)
	if created {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, s.ID, 0, "/", "", false, true)
	}
	return s
}

// ShowReviewPage renders the form with whatever the session currently displays.
func ShowReviewPage(c *gin.Context, env *Env) {
	s := loadSession(c, env)
	s.Lock()
	data := pageData{
		Categories:       types.Categories,
		Category:         s.Category,
		Review:           s.Review,
		Idle:             s.State() == session.Idle,
		SentimentEnabled: env.Analyzer.Enabled(),
		Sentiment:        s.Sentiment,
		SentimentNotice:  s.SentimentNotice,
		Entities:         append([]types.Entity(nil), s.Entities...),
		EntitiesShown:    s.EntitiesShown,
		EntitiesNotice:   s.EntitiesNotice,
		Warnings:         env.Warnings,
	}
	s.Unlock()
	data.SentimentHTML = renderMarkdown(data.Sentiment)

	c.HTML(http.StatusOK, "index.html", data)
}

// SubmitReview applies the posted text and category, runs the requested
// action and redirects back to the page.
func SubmitReview(c *gin.Context, env *Env) {
	var form types.ReviewRequest
	if err := c.ShouldBind(&form); err != nil {
		c.String(http.StatusBadRequest, "invalid form: %v", err)
		return
	}
	category, err := types.ParseCategory(form.Category)
	if err != nil {
		c.String(http.StatusBadRequest, "%s", err.Error())
		return
	}

	s := loadSession(c, env)
	s.Lock()
	defer s.Unlock()

	s.SetInput(form.Review, category)

	ctx := c.Request.Context()
	switch action := c.PostForm("action"); action {
	case "sentiment":
		err = env.Loop.RunSentiment(ctx, s)
	case "entities":
		err = env.Loop.RunEntities(ctx, s)
	case "", "update":
	default:
		c.String(http.StatusBadRequest, "unknown action %q", action)
		return
	}
	if err != nil {
		log.Printf("Review action for session %s: %v", s.ID, err)
	}

	c.Redirect(http.StatusSeeOther, "/")
}
