//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"immodash/internal/domain"
	"immodash/internal/normalize"
	mysqlrepo "immodash/internal/storage/mysql"
)

// migrationsDir honours MIGRATIONS_DIR, else the repo's own migrations/.
func migrationsDir(t *testing.T) string {
	t.Helper()
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("..", "..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir(t)

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=immodash",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "immodash")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

func mustExec(t *testing.T, db *sql.DB, q string, args ...any) {
	t.Helper()
	if _, err := db.Exec(q, args...); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestRepo_MySQL_FetchAndUpdate(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	mustExec(t, db, `INSERT INTO locaux
  (ref_bien, type_de_bien, commune, quartier, prix, disponible, meubles, chambre, date_publication, message_initial, latitude, longitude)
VALUES
  ('REF-1', 'villa', 'Cocody', 'Angré', '500 000 FCFA', 'oui', 'non', 4, '2026-09-10 10:00:00', 'Villa duplex', 5.39, -3.98),
  ('REF-2', 'studio', 'Marcory', NULL, '150000', 'non', 'oui', 1, '2026-09-12 08:00:00', NULL, NULL, NULL)`)
	mustExec(t, db, `INSERT INTO visite_programmee (nom_prenom, numero, date_rv, local_interesse, visite_prog)
VALUES ('Awa Koné', '0707070707', '2026-10-20 10:00', 'Cocody', 'oui')`)
	mustExec(t, db, `INSERT INTO publications (id, message, groupe, horodatage) VALUES
  ('m1', 'Je cherche une villa', '123@g.us', '2026-09-01 09:00:00'),
  ('m2', 'Disponible studio', '123@g.us', '2026-09-02 09:00:00'),
  ('m3', 'Besoin duplex', '456@g.us', '2026-09-03 09:00:00')`)

	raws, err := repo.FetchProperties(ctx)
	if err != nil {
		t.Fatalf("FetchProperties: %v", err)
	}
	if len(raws) != 2 {
		t.Fatalf("properties: %d", len(raws))
	}
	props := normalize.NormalizeProperties(raws)
	if props[0].RefBien != "REF-2" {
		t.Fatalf("newest first: %+v", props[0])
	}
	villa := props[1]
	if villa.TypeBien != "Villa" || villa.RawPrice != 500000 || !villa.Disponible || villa.Chambres != 4 {
		t.Fatalf("villa: %+v", villa)
	}
	if villa.Coordinates == nil || villa.Coordinates.Lat != 5.39 {
		t.Fatalf("stored coordinates: %+v", villa.Coordinates)
	}
	if props[0].Coordinates != nil {
		t.Fatalf("NULL coordinates must stay nil: %+v", props[0].Coordinates)
	}

	visits, err := repo.FetchVisits(ctx)
	if err != nil || len(visits) != 1 {
		t.Fatalf("FetchVisits: %v %d", err, len(visits))
	}
	if visits[0]["nom_prenom"] != "Awa Koné" {
		t.Fatalf("text columns must be strings: %#v", visits[0]["nom_prenom"])
	}

	pubs, err := repo.FetchPublications(ctx, 2)
	if err != nil {
		t.Fatalf("FetchPublications: %v", err)
	}
	if len(pubs) != 2 || pubs[0]["id"] != "m3" {
		t.Fatalf("publications newest first, limited: %v", pubs)
	}

	mustExec(t, db, `INSERT INTO images (publication_id, lien_image, lien_thumb, image_order) VALUES
  ('wa-2', 'https://cdn/b.jpg', NULL, 1),
  ('wa-1', 'https://cdn/a.jpg', 'https://cdn/a_t.jpg', 0),
  ('wa-2', 'https://cdn/c.jpg', NULL, 0),
  (NULL, 'https://cdn/orphan.jpg', NULL, 0)`)
	imgRows, err := repo.FetchImages(ctx)
	if err != nil {
		t.Fatalf("FetchImages: %v", err)
	}
	if len(imgRows) != 3 {
		t.Fatalf("rows without publication are skipped: %v", imgRows)
	}
	byPub := normalize.GroupImages(imgRows)
	if imgs := byPub["wa-2"]; len(imgs) != 2 || imgs[0].URL != "https://cdn/c.jpg" || imgs[1].Order != 1 {
		t.Fatalf("wa-2: %+v", imgs)
	}
	if imgs := byPub["wa-1"]; len(imgs) != 1 || imgs[0].ThumbURL != "https://cdn/a_t.jpg" {
		t.Fatalf("wa-1: %+v", imgs)
	}

	if err := repo.UpdatePipelineStatus(ctx, "1", domain.StageNegotiation); err != nil {
		t.Fatalf("UpdatePipelineStatus: %v", err)
	}
	if err := repo.UpdatePipelineStatus(ctx, "1", domain.StageClosed); err != nil {
		t.Fatalf("UpdatePipelineStatus again: %v", err)
	}
	if err := repo.UpdatePipelineStatus(ctx, "1", domain.Stage("archived")); !errors.Is(err, domain.ErrInvalidStage) {
		t.Fatalf("invalid stage: %v", err)
	}
	stages, err := repo.FetchPipelineStages(ctx)
	if err != nil || stages["1"] != domain.StageClosed || len(stages) != 1 {
		t.Fatalf("stages: %v %v", stages, err)
	}

	if err := repo.UpsertGroup(ctx, "123@g.us", "Agents Cocody"); err != nil {
		t.Fatalf("UpsertGroup: %v", err)
	}
	mustExec(t, db, `INSERT INTO whatsapp_groups (jid, name) VALUES ('789@g.us', '')`)
	names, err := repo.FetchGroupNames(ctx)
	if err != nil || names["123@g.us"] != "Agents Cocody" || len(names) != 1 {
		t.Fatalf("group names: %v %v", names, err)
	}
}

func TestRepo_MySQL_Users(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	if _, err := repo.FindUserByEmail(ctx, "nobody@immodash.ci"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing user: %v", err)
	}
	u := domain.User{Email: " Agent@Immodash.ci ", Name: "Agent", Role: domain.RoleAgent, PasswordHash: "$2a$10$hash"}
	if err := repo.UpsertUser(ctx, u); err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	if err := repo.UpsertUser(ctx, domain.User{Email: "agent@immodash.ci", Name: "Agent Yao", Role: domain.RoleAgent}); err != nil {
		t.Fatalf("UpsertUser keep hash: %v", err)
	}
	got, err := repo.FindUserByEmail(ctx, "AGENT@immodash.ci")
	if err != nil {
		t.Fatalf("FindUserByEmail: %v", err)
	}
	if got.Name != "Agent Yao" || got.Role != domain.RoleAgent || got.PasswordHash != "$2a$10$hash" || got.ID == "" {
		t.Fatalf("user: %+v", got)
	}
}
