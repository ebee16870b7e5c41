package httpcore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/firasghr/httpengine/httpcore"
)

func TestCookieJar_SetGetClear(t *testing.T) {
	jar := httpcore.NewCookieJar()
	jar.SetCookie(httpcore.Cookie{Name: "a", Value: "1"})
	jar.SetCookie(httpcore.Cookie{Name: "b", Value: "2"})

	if c, ok := jar.GetCookie("a"); !ok || c.Value != "1" {
		t.Errorf("GetCookie(a): got (%+v, %v)", c, ok)
	}
	if len(jar.GetCookies()) != 2 {
		t.Errorf("expected 2 cookies, got %d", len(jar.GetCookies()))
	}

	jar.Clear()
	if len(jar.GetCookies()) != 0 {
		t.Error("Clear should empty the jar")
	}
}

func TestCookieJar_ParseCookiesFromHeaders(t *testing.T) {
	jar := httpcore.NewCookieJar()
	jar.ParseCookiesFromHeaders([]httpcore.HeaderPair{
		{Name: "set-cookie", Value: "sid=xyz; Path=/; HttpOnly"},
		{Name: "Set-Cookie", Value: "theme=dark"},
		{Name: "Content-Type", Value: "text/html"},
	}, "example.com")

	sid, ok := jar.GetCookie("sid")
	if !ok || sid.Value != "xyz" || sid.Path != "/" || !sid.HTTPOnly {
		t.Errorf("sid cookie not parsed correctly: %+v, ok=%v", sid, ok)
	}
	theme, ok := jar.GetCookie("theme")
	if !ok || theme.Value != "dark" || theme.Domain != "example.com" {
		t.Errorf("theme cookie not parsed correctly: %+v, ok=%v", theme, ok)
	}
}

func TestCookieJar_MaxAgeWinsOverExpires(t *testing.T) {
	jar := httpcore.NewCookieJar()
	jar.ParseCookieHeader("a=1; Expires=Mon, 02 Jan 2006 15:04:05 GMT; Max-Age=3600", "example.com")
	c, ok := jar.GetCookie("a")
	if !ok {
		t.Fatal("cookie not stored")
	}
	if c.Expires == nil || c.IsExpired() {
		t.Error("max-age should win over an already-past expires, giving a future expiry")
	}
}

func TestCookieJar_MaxAgeWinsRegardlessOfAttributeOrder(t *testing.T) {
	jar := httpcore.NewCookieJar()
	jar.ParseCookieHeader("a=1; Max-Age=3600; Expires=Mon, 02 Jan 2006 15:04:05 GMT", "example.com")
	c, ok := jar.GetCookie("a")
	if !ok {
		t.Fatal("cookie not stored")
	}
	if c.Expires == nil || c.IsExpired() {
		t.Error("max-age should win even when expires is written after it in the header")
	}
}

func TestCookieJar_SaveAndLoadFile(t *testing.T) {
	jar := httpcore.NewCookieJar()
	jar.SetCookie(httpcore.Cookie{Name: "sid", Value: "abc", Domain: "example.com", Path: "/"})
	jar.SetCookie(httpcore.Cookie{Name: "theme", Value: "dark", Domain: "example.com", Path: "/", Secure: true})

	path := filepath.Join(t.TempDir(), "cookies.txt")
	if err := jar.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}

	loaded := httpcore.NewCookieJar()
	if err := loaded.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if len(loaded.GetCookies()) != 2 {
		t.Errorf("expected 2 cookies after round-trip, got %d", len(loaded.GetCookies()))
	}
	sid, ok := loaded.GetCookie("sid")
	if !ok || sid.Value != "abc" {
		t.Errorf("sid cookie lost in round-trip: %+v, ok=%v", sid, ok)
	}
}

func TestCookieJar_LoadFromFile_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.txt")
	content := "# Netscape HTTP Cookie File\n" +
		"example.com\tFALSE\t/\tFALSE\tnot-a-number\tgood\tvalue\n" +
		"example.com\tFALSE\t/\tFALSE\t0\tsid\tabc\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	jar := httpcore.NewCookieJar()
	if err := jar.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if _, ok := jar.GetCookie("good"); ok {
		t.Error("cookie with unparsable epoch should have been skipped")
	}
	if _, ok := jar.GetCookie("sid"); !ok {
		t.Error("subsequent valid cookie line should still load")
	}
}

