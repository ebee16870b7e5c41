package httpcore

import (
	"regexp"

	"github.com/firasghr/httpengine/jschallenge"
)

// challengeScriptPattern extracts the body of a <script>...</script> block
// from a JS-challenge response page. Real challenge pages vary wildly; this
// covers the common "single inline script computes a token" shape.
var challengeScriptPattern = regexp.MustCompile(`(?s)<script[^>]*>(.*?)</script>`)

// ChallengeInterceptor solves lightweight JavaScript challenges (math
// puzzles, cookie-seeding snippets) a target may return instead of the real
// response, using an in-process otto VM rather than a headless browser. On
// a detected challenge it evaluates the page's script, copies any cookie
// the script set into the request's CookieJar, and leaves the response
// untouched — the caller decides whether to re-issue the request now that
// the jar carries the clearance cookie.
type ChallengeInterceptor struct {
	solver     *jschallenge.OttoSolver
	statusCode int
}

// NewChallengeInterceptor returns a ChallengeInterceptor that treats
// triggerStatus (typically 503) responses as challenge pages, solving them
// with a fresh otto VM seeded with userAgent.
func NewChallengeInterceptor(userAgent string, triggerStatus int) (*ChallengeInterceptor, error) {
	solver, err := jschallenge.NewOttoSolver(userAgent)
	if err != nil {
		return nil, err
	}
	return &ChallengeInterceptor{solver: solver, statusCode: triggerStatus}, nil
}

func (c *ChallengeInterceptor) BeforeRequest(*PooledHandle, *Request) error { return nil }

func (c *ChallengeInterceptor) AfterResponse(_ *PooledHandle, req *Request, resp *Response) error {
	if resp.StatusCode != c.statusCode {
		return nil
	}
	match := challengeScriptPattern.FindSubmatch(resp.Body)
	if match == nil {
		return nil
	}

	if _, err := c.solver.Eval(string(match[1])); err != nil {
		return nil // an unsolvable challenge is not a transport failure
	}

	cookie, err := c.solver.GetCookie()
	if err != nil || cookie == "" || req.CookieJar == nil {
		return nil
	}
	req.CookieJar.ParseCookieHeader(cookie, hostOf(req.URL))
	return nil
}
