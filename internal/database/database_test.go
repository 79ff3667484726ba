package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/TobiSchelling/expedanalysis/internal/reviews"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleReviews() []reviews.Review {
	return []reviews.Review{
		{Company: "JNE", Province: "Jawa Barat", Topic: "Komunikasi Kurir", ProcessedReviews: "kurir tidak bisa dihubungi"},
		{Company: "JNE", Province: "Bali", Topic: "Delay/ Lambat Pengiriman", ProcessedReviews: "paket telat"},
		{Company: "SiCepat", Province: "Bali", Topic: "Kualitas Pelayan Buruk", ProcessedReviews: ""},
	}
}

func TestReplaceAndReadReviews(t *testing.T) {
	db := openTestDB(t)
	n, err := db.ReplaceReviews(sampleReviews())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 imported, got %d", n)
	}

	got, err := db.Reviews()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := sampleReviews()
	if len(got) != len(want) {
		t.Fatalf("expected %d reviews, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("review %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestReplaceReviewsDiscardsPrevious(t *testing.T) {
	db := openTestDB(t)
	db.ReplaceReviews(sampleReviews())
	db.ReplaceReviews(sampleReviews()[:1])

	got, err := db.Reviews()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 review after replace, got %d", len(got))
	}
}

func TestReviewsEmptyStore(t *testing.T) {
	db := openTestDB(t)
	got, err := db.Reviews()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", got)
	}
}

func TestCompanies(t *testing.T) {
	db := openTestDB(t)
	db.ReplaceReviews(sampleReviews())
	got, err := db.Companies()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "JNE" || got[1] != "SiCepat" {
		t.Errorf("unexpected companies %v", got)
	}
}

func TestCreateAndGetUser(t *testing.T) {
	db := openTestDB(t)
	id, err := db.CreateUser("Ops@JNE.example", "hash", "JNE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero user ID")
	}

	u, err := db.GetUserByEmail("ops@jne.example ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u == nil || u.Company != "JNE" || u.Email != "ops@jne.example" {
		t.Errorf("unexpected user %+v", u)
	}

	byID, err := db.GetUserByID(id)
	if err != nil || byID == nil || byID.Email != u.Email {
		t.Errorf("GetUserByID: %+v, %v", byID, err)
	}
}

func TestCreateDuplicateUser(t *testing.T) {
	db := openTestDB(t)
	db.CreateUser("a@x.example", "h1", "JNE")
	id, err := db.CreateUser("A@x.example", "h2", "SiCepat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 0 {
		t.Error("expected 0 for duplicate user")
	}
}

func TestGetUnknownUser(t *testing.T) {
	db := openTestDB(t)
	u, err := db.GetUserByEmail("nobody@x.example")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u != nil {
		t.Errorf("expected nil, got %+v", u)
	}
}

func TestListAndDeleteUsers(t *testing.T) {
	db := openTestDB(t)
	db.CreateUser("b@x.example", "h", "JNE")
	id, _ := db.CreateUser("a@x.example", "h", "SiCepat")
	db.CreateSession("tok", id, time.Now().Add(time.Hour))

	users, err := db.ListUsers()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 2 || users[0].Email != "a@x.example" {
		t.Errorf("unexpected users %+v", users)
	}

	removed, err := db.DeleteUser("a@x.example")
	if err != nil || !removed {
		t.Fatalf("DeleteUser: %v, %v", removed, err)
	}
	if s, _ := db.GetSession("tok", time.Now()); s != nil {
		t.Error("expected session to be removed with its user")
	}

	removed, err = db.DeleteUser("a@x.example")
	if err != nil || removed {
		t.Errorf("second delete: %v, %v", removed, err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	db := openTestDB(t)
	uid, _ := db.CreateUser("a@x.example", "h", "JNE")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := db.CreateSession("live", uid, now.Add(time.Hour)); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if err := db.CreateSession("old", uid, now.Add(-time.Minute)); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	s, err := db.GetSession("live", now)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if s == nil || s.UserID != uid || !s.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("unexpected session %+v", s)
	}

	if s, _ := db.GetSession("old", now); s != nil {
		t.Error("expected expired session to be hidden")
	}

	purged, err := db.PurgeExpiredSessions(now)
	if err != nil {
		t.Fatalf("PurgeExpiredSessions: %v", err)
	}
	if purged != 1 {
		t.Errorf("expected 1 purged session, got %d", purged)
	}

	if err := db.DeleteSession("live"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if s, _ := db.GetSession("live", now); s != nil {
		t.Error("expected session to be gone after logout")
	}
}

func TestRecordAndListInferences(t *testing.T) {
	db := openTestDB(t)
	var ids []string
	for _, text := range []string{"kurir kasar", "paket telat"} {
		id, err := db.RecordInference(InferenceRecord{
			Company:       "JNE",
			InputText:     text,
			ProcessedText: text,
			TopLabel:      "Komunikasi Kurir",
			Scores: []TopicScore{
				{Label: "Delay/ Lambat Pengiriman", Probability: 0.2},
				{Label: "Komunikasi Kurir", Probability: 0.8},
			},
		})
		if err != nil {
			t.Fatalf("RecordInference: %v", err)
		}
		ids = append(ids, id)
	}
	if len(ids[0]) != 26 || ids[0] >= ids[1] {
		t.Errorf("expected increasing ULIDs, got %v", ids)
	}
	db.RecordInference(InferenceRecord{Company: "SiCepat", InputText: "x", ProcessedText: "x", TopLabel: "t"})

	recs, err := db.RecentInferences("JNE", 10)
	if err != nil {
		t.Fatalf("RecentInferences: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].InputText != "paket telat" {
		t.Errorf("expected newest first, got %q", recs[0].InputText)
	}
	if len(recs[0].Scores) != 2 || recs[0].Scores[1].Probability != 0.8 {
		t.Errorf("scores not round-tripped: %+v", recs[0].Scores)
	}
}

func TestGetStats(t *testing.T) {
	db := openTestDB(t)
	db.ReplaceReviews(sampleReviews())
	uid, _ := db.CreateUser("a@x.example", "h", "JNE")
	db.CreateSession("tok", uid, time.Now().Add(time.Hour))

	s, err := db.GetStats()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Reviews != 3 || s.Companies != 2 || s.Provinces != 2 || s.Topics != 3 {
		t.Errorf("unexpected review stats %+v", s)
	}
	if s.Users != 1 || s.ActiveSessions != 1 || s.Inferences != 0 {
		t.Errorf("unexpected account stats %+v", s)
	}
}
