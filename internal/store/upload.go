// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/pubmed-tool/pkg/types"
)

// PapersSchema is the column list of the papers relation.
const PapersSchema = `pmid INTEGER PRIMARY KEY,
	title TEXT,
	pubdate DATE,
	abstract TEXT,
	journal TEXT,
	isoabbrev TEXT,
	numauthors INTEGER,
	volume INTEGER,
	issue INTEGER,
	page_start TEXT,
	page_end TEXT,
	other_type TEXT,
	other_val TEXT,
	keywords TEXT,
	language TEXT`

// AuthorsSchema is the column list of the authors relation.
const AuthorsSchema = `fullname TEXT PRIMARY KEY,
	first TEXT,
	last TEXT,
	initials TEXT`

// PairsSchema returns the column list of the pairs relation, referencing
// the given papers and authors tables.
func PairsSchema(papers, authors string) string {
	return fmt.Sprintf(`pmid INTEGER NOT NULL REFERENCES %q(pmid),
	fullname TEXT NOT NULL REFERENCES %q(fullname),
	firstauthor BOOLEAN NOT NULL DEFAULT 0,
	UNIQUE(pmid, fullname)`, papers, authors)
}

// UploadSummary counts the rows written per relation. In append mode rows
// whose key already exists are skipped and counted separately.
type UploadSummary struct {
	Papers, Authors, Pairs int
	Skipped                int
}

// Upload writes rel into the three configured tables inside one
// transaction. With overwrite the tables are dropped and recreated first;
// otherwise rows are appended and existing keys are kept. Progress is
// reported to w when non-nil.
func (s *Store) Upload(ctx context.Context, rel types.Relations, overwrite bool, w io.Writer) (UploadSummary, error) {
	var sum UploadSummary
	t := s.tables

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return sum, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if overwrite {
		for _, name := range []string{t.Pairs, t.Papers, t.Authors} {
			if err := dropTable(ctx, tx, name); err != nil {
				return sum, err
			}
		}
	}
	if err := ensureTable(ctx, tx, t.Papers, PapersSchema); err != nil {
		return sum, err
	}
	if err := ensureTable(ctx, tx, t.Authors, AuthorsSchema); err != nil {
		return sum, err
	}
	if err := ensureTable(ctx, tx, t.Pairs, PairsSchema(t.Papers, t.Authors)); err != nil {
		return sum, err
	}

	mode := insertOrFail
	if !overwrite {
		mode = insertOrIgnore
	}

	n, skipped, err := insertPapers(ctx, tx, t.Papers, mode, rel.Papers)
	if err != nil {
		return sum, err
	}
	sum.Papers, sum.Skipped = n, sum.Skipped+skipped

	n, skipped, err = insertAuthors(ctx, tx, t.Authors, mode, rel.Authors)
	if err != nil {
		return sum, err
	}
	sum.Authors, sum.Skipped = n, sum.Skipped+skipped

	n, skipped, err = insertPairs(ctx, tx, t.Pairs, mode, rel.Pairs)
	if err != nil {
		return sum, err
	}
	sum.Pairs, sum.Skipped = n, sum.Skipped+skipped

	if err := tx.Commit(); err != nil {
		return sum, fmt.Errorf("committing upload: %w", err)
	}

	s.log.Info("upload complete", "papers", sum.Papers, "authors", sum.Authors, "pairs", sum.Pairs,
		"skipped", sum.Skipped, "overwrite", overwrite)
	if w != nil {
		fmt.Fprintf(w, "uploaded: %d papers, %d authors, %d pairs (%d existing rows kept)\n",
			sum.Papers, sum.Authors, sum.Pairs, sum.Skipped)
	}
	return sum, nil
}

const (
	insertOrFail   = "INSERT INTO"
	insertOrIgnore = "INSERT OR IGNORE INTO"
)

// AppendPapers inserts papers into the papers table, creating it when
// missing. Rows whose PMID already exists are kept and counted as ignored.
func (s *Store) AppendPapers(ctx context.Context, papers []types.Paper) (inserted, ignored int, err error) {
	if err := ensureTable(ctx, s.db, s.tables.Papers, PapersSchema); err != nil {
		return 0, 0, err
	}
	return insertPapers(ctx, s.db, s.tables.Papers, insertOrIgnore, papers)
}

// AppendAuthors inserts authors into the authors table, creating it when
// missing. Existing author keys are kept.
func (s *Store) AppendAuthors(ctx context.Context, authors []types.Author) (inserted, ignored int, err error) {
	if err := ensureTable(ctx, s.db, s.tables.Authors, AuthorsSchema); err != nil {
		return 0, 0, err
	}
	return insertAuthors(ctx, s.db, s.tables.Authors, insertOrIgnore, authors)
}

// AppendPairs inserts pairs into the pairs table, creating it when missing.
// Every pair must reference an existing paper and author.
func (s *Store) AppendPairs(ctx context.Context, pairs []types.Pair) (inserted, ignored int, err error) {
	t := s.tables
	if err := ensureTable(ctx, s.db, t.Pairs, PairsSchema(t.Papers, t.Authors)); err != nil {
		return 0, 0, err
	}
	return insertPairs(ctx, s.db, t.Pairs, insertOrIgnore, pairs)
}

func insertPapers(ctx context.Context, db preparer, table, mode string, papers []types.Paper) (int, int, error) {
	n, skipped, err := execEach(ctx, db,
		fmt.Sprintf(`%s %q (pmid, title, pubdate, abstract, journal, isoabbrev, numauthors,
			volume, issue, page_start, page_end, other_type, other_val, keywords, language)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, mode, table),
		len(papers), func(i int) []any {
			p := papers[i]
			return []any{p.PMID, p.Title, nullDate(p.PubDate), nullString(p.Abstract), p.Journal, p.ISOAbbrev,
				p.NumAuthors, nullInt(p.Volume), nullInt(p.Issue), nullString(p.PageStart), nullString(p.PageEnd),
				nullString(string(p.OtherType)), nullString(p.OtherValue), p.Keywords, p.Language}
		})
	if err != nil {
		return n, skipped, fmt.Errorf("inserting papers: %w", err)
	}
	return n, skipped, nil
}

func insertAuthors(ctx context.Context, db preparer, table, mode string, authors []types.Author) (int, int, error) {
	n, skipped, err := execEach(ctx, db,
		fmt.Sprintf(`%s %q (fullname, first, last, initials) VALUES (?, ?, ?, ?)`, mode, table),
		len(authors), func(i int) []any {
			a := authors[i]
			return []any{a.FullName, nullString(a.First), a.Last, nullString(a.Initials)}
		})
	if err != nil {
		return n, skipped, fmt.Errorf("inserting authors: %w", err)
	}
	return n, skipped, nil
}

func insertPairs(ctx context.Context, db preparer, table, mode string, pairs []types.Pair) (int, int, error) {
	n, skipped, err := execEach(ctx, db,
		fmt.Sprintf(`%s %q (pmid, fullname, firstauthor) VALUES (?, ?, ?)`, mode, table),
		len(pairs), func(i int) []any {
			p := pairs[i]
			return []any{p.PMID, p.FullName, p.FirstAuthor}
		})
	if err != nil {
		return n, skipped, fmt.Errorf("inserting pairs: %w", err)
	}
	return n, skipped, nil
}

// preparer is satisfied by *sql.DB and *sql.Tx.
type preparer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// execEach runs stmt once per row and returns how many rows were inserted
// and how many were ignored.
func execEach(ctx context.Context, db preparer, stmt string, n int, args func(int) []any) (inserted, ignored int, err error) {
	ps, err := db.PrepareContext(ctx, stmt)
	if err != nil {
		return 0, 0, err
	}
	defer ps.Close()

	for i := 0; i < n; i++ {
		res, err := ps.ExecContext(ctx, args(i)...)
		if err != nil {
			return inserted, ignored, err
		}
		if affected, _ := res.RowsAffected(); affected > 0 {
			inserted++
		} else {
			ignored++
		}
	}
	return inserted, ignored, nil
}

// ReadPapers returns every row of the papers relation ordered by PMID.
func (s *Store) ReadPapers(ctx context.Context) ([]types.Paper, error) {
	if ok, err := s.TableExists(ctx, s.tables.Papers); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("%w: table %s does not exist", types.ErrSchema, s.tables.Papers)
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT pmid, title, pubdate, abstract, journal,
		isoabbrev, numauthors, volume, issue, page_start, page_end, other_type, other_val,
		keywords, language FROM %q ORDER BY pmid`, s.tables.Papers))
	if err != nil {
		return nil, fmt.Errorf("reading papers: %w", err)
	}
	defer rows.Close()

	var out []types.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// ScanPaper reads the fifteen papers columns, in schema order, from sc.
func ScanPaper(sc scanner) (types.Paper, error) {
	return scanPaper(sc)
}

func scanPaper(sc scanner) (types.Paper, error) {
	var (
		p                        types.Paper
		pubdate                  dateColumn
		title, abstract, journal sql.NullString
		isoabbrev, pageStart     sql.NullString
		pageEnd, otherType       sql.NullString
		otherVal, keywords, lang sql.NullString
		volume, issue            sql.NullInt64
	)
	if err := sc.Scan(&p.PMID, &title, &pubdate, &abstract, &journal, &isoabbrev, &p.NumAuthors,
		&volume, &issue, &pageStart, &pageEnd, &otherType, &otherVal, &keywords, &lang); err != nil {
		return p, fmt.Errorf("scanning paper: %w", err)
	}
	p.PubDate = types.Date(pubdate)
	p.Title, p.Abstract, p.Journal, p.ISOAbbrev = title.String, abstract.String, journal.String, isoabbrev.String
	p.PageStart, p.PageEnd = pageStart.String, pageEnd.String
	p.OtherType, p.OtherValue = types.Designator(otherType.String), otherVal.String
	p.Keywords, p.Language = keywords.String, lang.String
	if volume.Valid {
		p.Volume = types.IntPtr(int(volume.Int64))
	}
	if issue.Valid {
		p.Issue = types.IntPtr(int(issue.Int64))
	}
	return p, nil
}

// dateColumn scans a DATE column. The sqlite3 driver returns time.Time for
// parseable values of DATE-declared columns and text otherwise.
type dateColumn types.Date

func (d *dateColumn) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = dateColumn{}
	case time.Time:
		*d = dateColumn{Year: v.Year(), Month: v.Month(), Day: v.Day()}
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	default:
		return fmt.Errorf("unsupported pubdate value %T", src)
	}
	return nil
}

func (d *dateColumn) parse(s string) error {
	if len(s) > 10 {
		s = s[:10]
	}
	parsed, err := types.ParseDate(s)
	if err != nil {
		return err
	}
	*d = dateColumn(parsed)
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullDate(d types.Date) sql.NullString {
	return nullString(d.String())
}
