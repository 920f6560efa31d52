package warmstart

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	bolt "go.etcd.io/bbolt"

	"github.com/homeplan/scheduler/pkg/domain"
	"github.com/homeplan/scheduler/pkg/metrics"
)

var (
	bucketSolutions = []byte("solutions")
	bucketRoutes    = []byte("routes")
)

// Store persists a problem's best solution to disk so a later CLI
// invocation can warm-start from it. Each problem id owns one whole-solution
// record plus one record per carer route, so a caller that only needs a
// single carer's prior route (e.g. re-seeding one vehicle after a partial
// re-solve) does not have to deserialize the whole solution.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if necessary) a bbolt database under dataDir and
// ensures its buckets exist.
func Open(dataDir string) (*Store, error) {
	path := filepath.Join(dataDir, "homeplan-warmstart.db")
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("warmstart: open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketSolutions, bucketRoutes} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("warmstart: create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSolution persists sol as problemID's best known solution, plus one
// record per carer route for finer-grained lookups.
func (s *Store) SaveSolution(problemID string, sol domain.Solution) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(sol)
		if err != nil {
			return fmt.Errorf("warmstart: encode solution: %w", err)
		}
		if err := tx.Bucket(bucketSolutions).Put([]byte(problemID), data); err != nil {
			return err
		}

		for _, route := range sol.ByCarer() {
			routeData, err := json.Marshal(route)
			if err != nil {
				return fmt.Errorf("warmstart: encode route: %w", err)
			}
			key := []byte(problemID + "/" + route.CarerID)
			if err := tx.Bucket(bucketRoutes).Put(key, routeData); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadSolution returns the persisted solution for problemID, or ok=false if
// nothing has been saved under that id.
func (s *Store) LoadSolution(problemID string) (domain.Solution, bool, error) {
	var sol domain.Solution
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketSolutions).Get([]byte(problemID))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &sol)
	})
	if err != nil {
		return domain.Solution{}, false, fmt.Errorf("warmstart: load solution: %w", err)
	}
	if found {
		metrics.WarmStartHits.Inc()
	}
	return sol, found, nil
}

// LoadRoute returns a single carer's persisted route for problemID, or
// ok=false if none was saved.
func (s *Store) LoadRoute(problemID, carerID string) (domain.Route, bool, error) {
	var route domain.Route
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketRoutes).Get([]byte(problemID + "/" + carerID))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &route)
	})
	if err != nil {
		return domain.Route{}, false, fmt.Errorf("warmstart: load route: %w", err)
	}
	return route, found, nil
}

// DeleteSolution removes any persisted solution and routes for problemID.
func (s *Store) DeleteSolution(problemID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketSolutions).Delete([]byte(problemID)); err != nil {
			return err
		}
		c := tx.Bucket(bucketRoutes).Cursor()
		prefix := []byte(problemID + "/")
		for k, _ := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, _ = c.Next() {
			if err := tx.Bucket(bucketRoutes).Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

func hasPrefix(b, prefix []byte) bool {
	if len(b) < len(prefix) {
		return false
	}
	for i := range prefix {
		if b[i] != prefix[i] {
			return false
		}
	}
	return true
}
