package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"taskify/backend/internal/cache"
	"taskify/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// TaskListKey is the cache key holding a user's full task list.
func TaskListKey(userID uuid.UUID) string {
	return "tasks:user:" + userID.String()
}

// CachedTaskService caches each user's full task list and drops it on every
// mutation. Filtered listings are derived from the cached list.
//
// Each user has a generation that every invalidation bumps. A list read from
// the database is only written back if the generation is unchanged, so a
// slow read cannot resurrect a list that a mutation already invalidated.
type CachedTaskService struct {
	inner TaskService
	cache cache.Cache
	pool  *cache.WorkerPool
	ttl   time.Duration

	mu          sync.Mutex
	generations map[uuid.UUID]uint64
}

func NewCachedTaskService(inner TaskService, c cache.Cache, pool *cache.WorkerPool, ttl time.Duration) *CachedTaskService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedTaskService{
		inner:       inner,
		cache:       c,
		pool:        pool,
		ttl:         ttl,
		generations: make(map[uuid.UUID]uint64),
	}
}

func (s *CachedTaskService) generation(userID uuid.UUID) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[userID]
}

var errStaleTaskList = errors.New("task list changed while loading")

// storeIfCurrent writes the list unless the user's tasks were mutated after gen was read.
func (s *CachedTaskService) storeIfCurrent(userID uuid.UUID, gen uint64, tasks interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generations[userID] != gen {
		return errStaleTaskList
	}
	return s.cache.Set(TaskListKey(userID), tasks, s.ttl)
}

func (s *CachedTaskService) GetTasks(db *gorm.DB, userID uuid.UUID, filter TaskFilter) ([]models.Task, error) {
	key := TaskListKey(userID)

	var all []models.Task
	err := s.cache.Get(key, &all)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("⚠️ Task list cache read failed for %s: %v", userID, err)
		}

		gen := s.generation(userID)
		all, err = s.inner.GetTasks(db, userID, TaskFilter{})
		if err != nil {
			return nil, err
		}
		if err := s.storeIfCurrent(userID, gen, all); err != nil && !errors.Is(err, errStaleTaskList) {
			log.Printf("⚠️ Task list cache write failed for %s: %v", userID, err)
		}
	}

	filtered := make([]models.Task, 0, len(all))
	for _, t := range all {
		if filter.Match(t) {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

func (s *CachedTaskService) GetTaskByID(db *gorm.DB, userID, id uuid.UUID) (models.Task, error) {
	return s.inner.GetTaskByID(db, userID, id)
}

func (s *CachedTaskService) CreateTask(db *gorm.DB, userID uuid.UUID, input models.TaskInput) (models.Task, error) {
	task, err := s.inner.CreateTask(db, userID, input)
	if err == nil {
		s.invalidate(userID)
	}
	return task, err
}

func (s *CachedTaskService) UpdateTask(db *gorm.DB, userID, id uuid.UUID, patch models.TaskPatch) (models.Task, error) {
	task, err := s.inner.UpdateTask(db, userID, id, patch)
	if err == nil {
		s.invalidate(userID)
	}
	return task, err
}

func (s *CachedTaskService) DeleteTask(db *gorm.DB, userID, id uuid.UUID) error {
	err := s.inner.DeleteTask(db, userID, id)
	if err == nil {
		s.invalidate(userID)
	}
	return err
}

func (s *CachedTaskService) invalidate(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generations[userID]++
	if err := s.cache.Delete(TaskListKey(userID)); err != nil {
		log.Printf("⚠️ Failed to invalidate task list for %s: %v", userID, err)
	}
}

// WarmTaskList queues a background load of the user's task list. It reports
// whether the job was accepted.
func (s *CachedTaskService) WarmTaskList(db *gorm.DB, userID uuid.UUID) bool {
	if s.pool == nil {
		return false
	}

	gen := s.generation(userID)
	return s.pool.SubmitJob(cache.WarmupJob{
		Key: TaskListKey(userID),
		TTL: s.ttl,
		Loader: func(ctx context.Context) (interface{}, error) {
			return s.inner.GetTasks(db.WithContext(ctx), userID, TaskFilter{})
		},
		Store: func(_ string, value interface{}, _ time.Duration) error {
			err := s.storeIfCurrent(userID, gen, value)
			if errors.Is(err, errStaleTaskList) {
				return nil
			}
			return err
		},
	})
}
