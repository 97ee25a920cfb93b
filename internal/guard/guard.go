// Package guard decides whether a protected route may render for the caller.
package guard

const (
	DefaultLoginPath      = "/login"
	DefaultOnboardingPath = "/onboarding"
)

// State is what the caller currently knows about its session and profile.
type State struct {
	SessionLoading   bool
	ProfileLoading   bool
	HasSession       bool
	HasActiveProfile bool
}

// Action is the outcome kind of a guard decision.
type Action string

const (
	ActionAllow    Action = "ALLOW"
	ActionRedirect Action = "REDIRECT"
)

// Decision is either Allow or a redirect to Path.
type Decision struct {
	Action Action `json:"action"`
	Path   string `json:"path,omitempty"`
	// Loading is set when the decision was deferred because state is not
	// resolved yet; callers keep showing their loading view.
	Loading bool `json:"loading,omitempty"`
}

func Allow() Decision { return Decision{Action: ActionAllow} }

func RedirectTo(path string) Decision {
	return Decision{Action: ActionRedirect, Path: path}
}

// Redirects reports whether d sends the caller elsewhere.
func (d Decision) Redirects() bool { return d.Action == ActionRedirect }

// Guard holds the redirect targets.
type Guard struct {
	LoginPath      string
	OnboardingPath string
}

// New returns a Guard, falling back to the default paths for blank values.
func New(loginPath, onboardingPath string) Guard {
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	if onboardingPath == "" {
		onboardingPath = DefaultOnboardingPath
	}
	return Guard{LoginPath: loginPath, OnboardingPath: onboardingPath}
}

// Evaluate never fails and has no side effects.
func (g Guard) Evaluate(s State) Decision {
	if s.SessionLoading || s.ProfileLoading {
		return Decision{Action: ActionAllow, Loading: true}
	}
	if !s.HasSession {
		return RedirectTo(g.LoginPath)
	}
	if !s.HasActiveProfile {
		return RedirectTo(g.OnboardingPath)
	}
	return Allow()
}
