package store

import (
    "context"
    "database/sql"
    "errors"
    "os"
    "path/filepath"
    "sort"
    "strings"

    "github.com/google/uuid"
    _ "github.com/jackc/pgx/v5/stdlib"

    "tourplan/internal/model"
)

type Postgres struct {
    db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
    db, err := sql.Open("pgx", dsn)
    if err != nil {
        return nil, err
    }
    if err := db.Ping(); err != nil {
        return nil, err
    }
    return &Postgres{db: db}, nil
}

func (p *Postgres) Close() error { return p.db.Close() }

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

// MigrateDir applies every .sql file in dir in lexical order. Dev
// helper; production schema management lives outside the process.
func (p *Postgres) MigrateDir(dir string) error {
    entries, err := os.ReadDir(dir)
    if err != nil {
        return err
    }
    var files []string
    for _, e := range entries {
        if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
            files = append(files, e.Name())
        }
    }
    sort.Strings(files)
    for _, name := range files {
        raw, err := os.ReadFile(filepath.Join(dir, name))
        if err != nil {
            return err
        }
        if _, err := p.db.Exec(string(raw)); err != nil {
            return err
        }
    }
    return nil
}

func (p *Postgres) CreateGig(ctx context.Context, g model.Gig) (string, error) {
    id := uuid.NewString()
    _, err := p.db.ExecContext(ctx, `INSERT INTO gigs
        (id, venue, venue_address, venue_city, venue_state, venue_zip, lat, lng,
         gig_date, load_in_time, sound_check_time, set_time,
         contact_name, contact_phone, contact_email,
         deposit_amount, contract_total, gig_status, notes, tour_linked)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9::date,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,false)`,
        id, g.Venue, g.VenueAddress, g.VenueCity, g.VenueState, g.VenueZip,
        g.Location.Lat, g.Location.Lng,
        g.GigDate, g.LoadInTime, g.SoundCheckTime, g.SetTime,
        g.ContactName, g.ContactPhone, g.ContactEmail,
        g.DepositAmount, g.ContractTotal, g.GigStatus, g.Notes)
    if err != nil {
        return "", err
    }
    return id, nil
}

const gigColumns = `id::text, venue, venue_address, venue_city, venue_state, venue_zip,
    lat, lng, to_char(gig_date,'YYYY-MM-DD'), load_in_time, sound_check_time, set_time,
    contact_name, contact_phone, contact_email,
    deposit_amount, contract_total, gig_status, notes, tour_linked`

func scanGig(row interface{ Scan(...any) error }) (model.Gig, error) {
    var g model.Gig
    err := row.Scan(&g.ID, &g.Venue, &g.VenueAddress, &g.VenueCity, &g.VenueState, &g.VenueZip,
        &g.Location.Lat, &g.Location.Lng, &g.GigDate, &g.LoadInTime, &g.SoundCheckTime, &g.SetTime,
        &g.ContactName, &g.ContactPhone, &g.ContactEmail,
        &g.DepositAmount, &g.ContractTotal, &g.GigStatus, &g.Notes, &g.TourLinked)
    return g, err
}

func (p *Postgres) GetGig(ctx context.Context, id string) (model.Gig, error) {
    g, err := scanGig(p.db.QueryRowContext(ctx, `SELECT `+gigColumns+` FROM gigs WHERE id=$1`, id))
    if errors.Is(err, sql.ErrNoRows) {
        return model.Gig{}, ErrNotFound
    }
    return g, err
}

func (p *Postgres) LinkGigToDefaultTour(ctx context.Context, gigID string) error {
    tx, err := p.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    defer func() { _ = tx.Rollback() }()

    var linked bool
    err = tx.QueryRowContext(ctx, `SELECT tour_linked FROM gigs WHERE id=$1`, gigID).Scan(&linked)
    if errors.Is(err, sql.ErrNoRows) {
        return ErrNotFound
    }
    if err != nil {
        return err
    }
    if linked {
        return nil
    }

    var tourID string
    err = tx.QueryRowContext(ctx, `SELECT id::text FROM tours WHERE is_default LIMIT 1`).Scan(&tourID)
    if errors.Is(err, sql.ErrNoRows) {
        return ErrNoDefaultTour
    }
    if err != nil {
        return err
    }

    if _, err := tx.ExecContext(ctx, `INSERT INTO tourconnect (gig_id, tour_id) VALUES ($1,$2)
        ON CONFLICT (gig_id) DO UPDATE SET tour_id=EXCLUDED.tour_id`, gigID, tourID); err != nil {
        return err
    }
    if _, err := tx.ExecContext(ctx, `UPDATE gigs SET tour_linked=true WHERE id=$1`, gigID); err != nil {
        return err
    }
    return tx.Commit()
}

func (p *Postgres) ListGigs(ctx context.Context, tourID string) ([]model.Gig, error) {
    rows, err := p.db.QueryContext(ctx, `SELECT `+gigColumns+` FROM gigs
        JOIN tourconnect tc ON tc.gig_id = gigs.id
        WHERE tc.tour_id=$1 ORDER BY gig_date ASC`, tourID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Gig
    for rows.Next() {
        g, err := scanGig(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, g)
    }
    return out, rows.Err()
}

func (p *Postgres) ListUnlinkedGigs(ctx context.Context, limit int) ([]model.Gig, error) {
    if limit <= 0 {
        limit = 50
    }
    rows, err := p.db.QueryContext(ctx, `SELECT `+gigColumns+` FROM gigs
        WHERE NOT tour_linked ORDER BY id LIMIT $1`, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Gig
    for rows.Next() {
        g, err := scanGig(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, g)
    }
    return out, rows.Err()
}

func (p *Postgres) CreateTour(ctx context.Context, in model.TourIn) (model.Tour, error) {
    tx, err := p.db.BeginTx(ctx, nil)
    if err != nil {
        return model.Tour{}, err
    }
    defer func() { _ = tx.Rollback() }()

    var haveDefault bool
    if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM tours WHERE is_default)`).Scan(&haveDefault); err != nil {
        return model.Tour{}, err
    }
    makeDefault := in.IsDefault || !haveDefault
    if makeDefault {
        if _, err := tx.ExecContext(ctx, `UPDATE tours SET is_default=false WHERE is_default`); err != nil {
            return model.Tour{}, err
        }
    }

    t := model.Tour{ID: uuid.NewString(), Title: in.Title, StartDate: in.StartDate, EndDate: in.EndDate, IsDefault: makeDefault}
    _, err = tx.ExecContext(ctx, `INSERT INTO tours (id, title, start_date, end_date, is_default)
        VALUES ($1,$2,NULLIF($3,'')::date,NULLIF($4,'')::date,$5)`,
        t.ID, t.Title, t.StartDate, t.EndDate, t.IsDefault)
    if err != nil {
        return model.Tour{}, err
    }
    if err := tx.Commit(); err != nil {
        return model.Tour{}, err
    }
    return t, nil
}

const tourColumns = `id::text, title,
    COALESCE(to_char(start_date,'YYYY-MM-DD'),''), COALESCE(to_char(end_date,'YYYY-MM-DD'),''), is_default`

func scanTour(row interface{ Scan(...any) error }) (model.Tour, error) {
    var t model.Tour
    err := row.Scan(&t.ID, &t.Title, &t.StartDate, &t.EndDate, &t.IsDefault)
    return t, err
}

func (p *Postgres) GetTour(ctx context.Context, id string) (model.Tour, error) {
    t, err := scanTour(p.db.QueryRowContext(ctx, `SELECT `+tourColumns+` FROM tours WHERE id=$1`, id))
    if errors.Is(err, sql.ErrNoRows) {
        return model.Tour{}, ErrNotFound
    }
    return t, err
}

func (p *Postgres) GetDefaultTour(ctx context.Context) (model.Tour, error) {
    t, err := scanTour(p.db.QueryRowContext(ctx, `SELECT `+tourColumns+` FROM tours WHERE is_default LIMIT 1`))
    if errors.Is(err, sql.ErrNoRows) {
        return model.Tour{}, ErrNoDefaultTour
    }
    return t, err
}

func (p *Postgres) SetDefaultTour(ctx context.Context, id string) error {
    tx, err := p.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    defer func() { _ = tx.Rollback() }()
    if _, err := tx.ExecContext(ctx, `UPDATE tours SET is_default=false WHERE is_default AND id<>$1`, id); err != nil {
        return err
    }
    res, err := tx.ExecContext(ctx, `UPDATE tours SET is_default=true WHERE id=$1`, id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrNotFound
    }
    return tx.Commit()
}

func (p *Postgres) ListTours(ctx context.Context) ([]model.Tour, error) {
    rows, err := p.db.QueryContext(ctx, `SELECT `+tourColumns+` FROM tours ORDER BY title`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Tour
    for rows.Next() {
        t, err := scanTour(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, t)
    }
    return out, rows.Err()
}
