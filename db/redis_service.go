package db

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/go-redis/redis/v8"

	"rollcall-users/models"
	"rollcall-users/sheet"
	"rollcall-users/validation"
)

const (
	usersKey       = "users"     // Sorted set: user IDs scored by creation order
	userSeqKey     = "users:seq" // Counter: last assigned user ID
	userInfoPrefix = "user:"     // Hash prefix: user:{id} -> stores user details

	maxTxAttempts = 3
)

// ErrUserNotFound is returned when no user has the requested ID.
var ErrUserNotFound = errors.New("user not found")

// RedisService handles operations with the Redis database
type RedisService struct {
	Client *redis.Client
}

// NewRedisService creates a new RedisService instance
func NewRedisService(client *redis.Client) *RedisService {
	return &RedisService{Client: client}
}

// Helper to generate user info key
func getUserInfoKey(id string) string {
	return userInfoPrefix + id
}

func userFields(u models.User) map[string]interface{} {
	return map[string]interface{}{
		"id":        u.ID,
		"fullName":  u.FullName,
		"studentId": u.StudentID,
		"className": u.ClassName,
	}
}

func userFromHash(data map[string]string) models.User {
	return models.User{
		ID:        data["id"],
		FullName:  data["fullName"],
		StudentID: data["studentId"],
		ClassName: data["className"],
	}
}

// --- User Operations ---

// AddUser stores a new user and returns it with its assigned ID.
func (s *RedisService) AddUser(ctx context.Context, d models.Draft) (models.User, error) {
	seq, err := s.Client.Incr(ctx, userSeqKey).Result()
	if err != nil {
		log.Printf("Error allocating user ID: %v", err)
		return models.User{}, fmt.Errorf("failed to allocate user ID: %w", err)
	}
	user := d.WithID(strconv.FormatInt(seq, 10))

	_, err = s.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, getUserInfoKey(user.ID), userFields(user))
		pipe.ZAdd(ctx, usersKey, &redis.Z{Score: float64(seq), Member: user.ID})
		return nil
	})
	if err != nil {
		log.Printf("Error adding user %s: %v", user.ID, err)
		return models.User{}, fmt.Errorf("failed to add user to Redis: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by its ID
func (s *RedisService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	data, err := s.Client.HGetAll(ctx, getUserInfoKey(id)).Result()
	if err != nil {
		log.Printf("Error getting user %s: %v", id, err)
		return models.User{}, fmt.Errorf("failed to get user from Redis: %w", err)
	}
	if len(data) == 0 {
		return models.User{}, ErrUserNotFound
	}
	return userFromHash(data), nil
}

// GetAllUsers retrieves all users in creation order
func (s *RedisService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	ids, err := s.Client.ZRange(ctx, usersKey, 0, -1).Result()
	if err != nil {
		log.Printf("Error getting all user IDs: %v", err)
		return nil, fmt.Errorf("failed to get user IDs from Redis: %w", err)
	}

	cmds := make([]*redis.StringStringMapCmd, len(ids))
	_, err = s.Client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, getUserInfoKey(id))
		}
		return nil
	})
	if err != nil {
		log.Printf("Error fetching user details: %v", err)
		return nil, fmt.Errorf("failed to get users from Redis: %w", err)
	}

	users := make([]models.User, 0, len(ids))
	for i, cmd := range cmds {
		data := cmd.Val()
		if len(data) == 0 {
			// Listed but without details; skip rather than fail the listing
			log.Printf("User %s is listed but has no details", ids[i])
			continue
		}
		users = append(users, userFromHash(data))
	}
	return users, nil
}

// UpdateUser replaces the fields of an existing user.
func (s *RedisService) UpdateUser(ctx context.Context, id string, d models.Draft) (models.User, error) {
	user := d.WithID(id)
	txf := s.updateTx(ctx, user)

	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		// Only a concurrent change to this user's details aborts the transaction
		err = s.Client.Watch(ctx, txf, getUserInfoKey(id))
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return models.User{}, err
		}
		log.Printf("Error updating user %s: %v", id, err)
		return models.User{}, fmt.Errorf("failed to update user in Redis: %w", err)
	}
	return user, nil
}

// updateTx writes user's fields if its details hash still exists. It must
// run under a watch of that hash.
func (s *RedisService) updateTx(ctx context.Context, user models.User) func(tx *redis.Tx) error {
	key := getUserInfoKey(user.ID)
	return func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrUserNotFound
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, userFields(user))
			return nil
		})
		return err
	}
}

// DeleteUser removes a user and its details.
func (s *RedisService) DeleteUser(ctx context.Context, id string) error {
	var removed *redis.IntCmd
	_, err := s.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.ZRem(ctx, usersKey, id)
		pipe.Del(ctx, getUserInfoKey(id))
		return nil
	})
	if err != nil {
		log.Printf("Error deleting user %s: %v", id, err)
		return fmt.Errorf("failed to delete user from Redis: %w", err)
	}
	if removed.Val() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CountUsers returns the number of stored users.
func (s *RedisService) CountUsers(ctx context.Context) (int64, error) {
	n, err := s.Client.ZCard(ctx, usersKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// --- Excel Import ---

// ImportUsersFromExcel reads a workbook and adds every valid row as a new
// user. Invalid rows are logged and skipped.
func (s *RedisService) ImportUsersFromExcel(ctx context.Context, file io.Reader) (int, error) {
	drafts, err := sheet.ReadUsers(file)
	if err != nil {
		log.Printf("Error reading Excel file: %v", err)
		return 0, err
	}

	log.Printf("Attempting to add %d users from Excel file", len(drafts))
	importedCount := 0
	for i, d := range drafts {
		if err := validation.Validate(d); err != nil {
			log.Printf("Skipping imported entry %d (%q): %v", i+1, d.FullName, err)
			continue
		}
		if _, err := s.AddUser(ctx, d); err != nil {
			log.Printf("Error adding user %s (%s) during import: %v", d.FullName, d.StudentID, err)
			continue
		}
		importedCount++
	}

	log.Printf("Successfully imported %d users", importedCount)
	return importedCount, nil
}

// --- Utility ---

// InitializeRedisClient creates and tests a Redis client connection
func InitializeRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("could not connect to Redis at %s: %w", addr, err)
	}

	log.Printf("Successfully connected to Redis %s DB %d", addr, db)
	return rdb, nil
}
