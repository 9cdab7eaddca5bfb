package route

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		location string
		authed   bool
		want     Resolution
	}{
		{
			name:     "home with session",
			location: "/",
			authed:   true,
			want:     Resolution{View: ViewHome, Path: "/"},
		},
		{
			name:     "home without session bounces to login",
			location: "/",
			authed:   false,
			want:     Resolution{View: ViewLogin, Path: "/login", RedirectTo: "/login"},
		},
		{
			name:     "login without session",
			location: "/login",
			authed:   false,
			want:     Resolution{View: ViewLogin, Path: "/login"},
		},
		{
			name:     "login with session bounces home",
			location: "/login",
			authed:   true,
			want:     Resolution{View: ViewHome, Path: "/", RedirectTo: "/"},
		},
		{
			name:     "login carries invite code",
			location: "/login?code=ABC123",
			authed:   false,
			want:     Resolution{View: ViewLogin, Path: "/login?code=ABC123", InviteCode: "ABC123"},
		},
		{
			name:     "deck editor with session",
			location: "/deck",
			authed:   true,
			want:     Resolution{View: ViewDeck, Path: "/deck"},
		},
		{
			name:     "deck editor without session settles on login",
			location: "/deck",
			authed:   false,
			want:     Resolution{View: ViewLogin, Path: "/login", RedirectTo: "/login"},
		},
		{
			name:     "shared deck needs no session",
			location: "/deck/RIFT-7Q2",
			authed:   false,
			want:     Resolution{View: ViewDeck, Path: "/deck/RIFT-7Q2", DeckCode: "RIFT-7Q2"},
		},
		{
			name:     "shared deck with session",
			location: "/deck/RIFT-7Q2",
			authed:   true,
			want:     Resolution{View: ViewDeck, Path: "/deck/RIFT-7Q2", DeckCode: "RIFT-7Q2"},
		},
		{
			name:     "profile with session",
			location: "/profile",
			authed:   true,
			want:     Resolution{View: ViewProfile, Path: "/profile"},
		},
		{
			name:     "profile without session settles on login",
			location: "/profile",
			authed:   false,
			want:     Resolution{View: ViewLogin, Path: "/login", RedirectTo: "/login"},
		},
		{
			name:     "register rewrites to login with code",
			location: "/register/ABC123",
			authed:   false,
			want: Resolution{
				View:       ViewLogin,
				Path:       "/login?code=ABC123",
				RedirectTo: "/login?code=ABC123",
				InviteCode: "ABC123",
			},
		},
		{
			name:     "register key is url encoded",
			location: "/register/a b",
			authed:   false,
			want: Resolution{
				View:       ViewLogin,
				Path:       "/login?code=a+b",
				RedirectTo: "/login?code=a+b",
				InviteCode: "a b",
			},
		},
		{
			name:     "register with session settles home",
			location: "/register/ABC123",
			authed:   true,
			want:     Resolution{View: ViewHome, Path: "/", RedirectTo: "/"},
		},
		{
			name:     "register without key is unknown",
			location: "/register",
			authed:   false,
			want:     Resolution{View: ViewLogin, Path: "/register"},
		},
		{
			name:     "unknown path degrades to login view",
			location: "/attic",
			authed:   true,
			want:     Resolution{View: ViewLogin, Path: "/attic"},
		},
		{
			name:     "trailing slash is tolerated",
			location: "/profile/",
			authed:   true,
			want:     Resolution{View: ViewProfile, Path: "/profile"},
		},
		{
			name:     "empty location",
			location: "",
			authed:   false,
			want:     Resolution{View: ViewLogin, Path: "/login", RedirectTo: "/login"},
		},
		{
			name:     "malformed location",
			location: "/%zz",
			authed:   true,
			want:     Resolution{View: ViewLogin, Path: "/%zz"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.location, tt.authed)
			if got != tt.want {
				t.Errorf("Resolve(%q, %v) = %+v, want %+v", tt.location, tt.authed, got, tt.want)
			}
		})
	}
}

// Whatever the input, a returned redirect target must resolve to itself
// under the same session state. One hop, never two.
func TestResolve_RedirectsSettleInOneHop(t *testing.T) {
	locations := []string{
		"/", "/login", "/login?code=X", "/deck", "/deck/RIFT-7Q2", "/deck/",
		"/profile", "/register/ABC123", "/register", "/register/",
		"", "/nope", "/deck/a/b", "/%zz", "/login/",
	}
	for _, loc := range locations {
		for _, authed := range []bool{false, true} {
			res := Resolve(loc, authed)
			if !res.Redirected() {
				continue
			}
			again := Resolve(res.RedirectTo, authed)
			if again.Redirected() {
				t.Errorf("Resolve(%q, %v) redirected to %q, which redirects again to %q",
					loc, authed, res.RedirectTo, again.RedirectTo)
			}
			if again.View != res.View {
				t.Errorf("Resolve(%q, %v) view %v disagrees with settled view %v",
					loc, authed, res.View, again.View)
			}
		}
	}
}

func TestResolve_SessionChangeReroutes(t *testing.T) {
	// Same location, session flips: the view must follow the session.
	before := Resolve("/login", false)
	if before.View != ViewLogin || before.Redirected() {
		t.Fatalf("before login: %+v", before)
	}
	after := Resolve("/login", true)
	if after.View != ViewHome || after.RedirectTo != "/" {
		t.Fatalf("after login: %+v, want home via /", after)
	}
}

func TestViewString(t *testing.T) {
	tests := []struct {
		view View
		want string
	}{
		{ViewLogin, "login"},
		{ViewHome, "home"},
		{ViewDeck, "deck"},
		{ViewProfile, "profile"},
		{View(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.view.String(); got != tt.want {
			t.Errorf("View(%d).String() = %q, want %q", tt.view, got, tt.want)
		}
	}
}
