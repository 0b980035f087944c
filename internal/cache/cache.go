// Package cache owns the authoritative in-memory copies of the session's
// projects, tasks and comments. Mutations confirm against the server before
// the cache is updated; membership changes are followed by a full project
// re-fetch rather than a local patch so that no view ever renders membership
// the server has not confirmed.
package cache

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hdngo/taskdeck/internal/models"
	"github.com/hdngo/taskdeck/internal/session"
)

// ErrOwnerImmutable is returned when a caller tries to remove the project
// owner from the membership list. Rejected before any network call.
var ErrOwnerImmutable = errors.New("project owner cannot be removed")

// Cache is the entity cache for one login session. Methods are safe for
// concurrent use; bubbletea commands run on their own goroutines.
type Cache struct {
	api *session.Client
	log *zap.SugaredLogger

	mu           sync.RWMutex
	user         models.User
	projects     []models.Project
	myTasks      []models.Task
	projectTasks map[int64][]models.Task
}

// New creates an empty cache backed by the given API client.
func New(api *session.Client, log *zap.SugaredLogger) *Cache {
	return &Cache{
		api:          api,
		log:          log,
		projectTasks: make(map[int64][]models.Task),
	}
}

// InitialState is the result of the post-login bootstrap.
type InitialState struct {
	User     models.User
	Projects []models.Project
	MyTasks  []models.Task
}

// LoadInitialState fetches the current user, every project the user belongs
// to, and the union of tasks assigned to the user across those projects.
// Any failure aborts initialization; the caller treats it as an
// unrecoverable session problem and logs out.
func (c *Cache) LoadInitialState(ctx context.Context) (*InitialState, error) {
	userID, err := c.api.CurrentUserID()
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := c.api.Do(ctx, http.MethodGet, fmt.Sprintf("/users/%d/", userID), nil, &user); err != nil {
		return nil, err
	}

	var projects []models.Project
	if err := c.api.Do(ctx, http.MethodGet, "/projects/", nil, &projects); err != nil {
		return nil, err
	}

	// One assigned-task fetch per project, in parallel.
	perProject := make([][]models.Task, len(projects))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range projects {
		g.Go(func() error {
			endpoint := fmt.Sprintf("/projects/%d/tasks/?assignee=me", p.ID)
			return c.api.Do(gctx, http.MethodGet, endpoint, nil, &perProject[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var myTasks []models.Task
	for _, tasks := range perProject {
		myTasks = append(myTasks, tasks...)
	}

	c.mu.Lock()
	c.user = user
	c.projects = projects
	c.myTasks = myTasks
	c.projectTasks = make(map[int64][]models.Task)
	c.mu.Unlock()

	c.log.Infow("initial state loaded",
		"user_id", user.ID,
		"projects", len(projects),
		"my_tasks", len(myTasks),
	)

	return &InitialState{User: user, Projects: projects, MyTasks: myTasks}, nil
}

// Reset drops all cached state. Called on logout.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = models.User{}
	c.projects = nil
	c.myTasks = nil
	c.projectTasks = make(map[int64][]models.Task)
}

// User returns the logged-in user's snapshot.
func (c *Cache) User() models.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

// Projects returns the cached project list.
func (c *Cache) Projects() []models.Project {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Project, len(c.projects))
	copy(out, c.projects)
	return out
}

// Project returns the cached project with the given id.
func (c *Cache) Project(id int64) (models.Project, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.projects {
		if p.ID == id {
			return p, true
		}
	}
	return models.Project{}, false
}

// ProjectName returns the cached project name, or a placeholder when the
// task's project reference dangles.
func (c *Cache) ProjectName(id int64) string {
	if p, ok := c.Project(id); ok {
		return p.Name
	}
	return "..."
}

// MyTasks returns the tasks assigned to the current user.
func (c *Cache) MyTasks() []models.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Task, len(c.myTasks))
	copy(out, c.myTasks)
	return out
}

// TasksForProject returns the project's tasks, fetching on first use and
// serving from the cache afterwards. Callers show their own loading state
// while the fetch is in flight.
func (c *Cache) TasksForProject(ctx context.Context, projectID int64) ([]models.Task, error) {
	c.mu.RLock()
	cached, ok := c.projectTasks[projectID]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	var tasks []models.Task
	endpoint := fmt.Sprintf("/projects/%d/tasks/", projectID)
	if err := c.api.Do(ctx, http.MethodGet, endpoint, nil, &tasks); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.projectTasks[projectID] = tasks
	c.mu.Unlock()
	return tasks, nil
}

// InvalidateTasks drops the memoized task list for a project so the next
// read fetches fresh.
func (c *Cache) InvalidateTasks(projectID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.projectTasks, projectID)
}

// CreateProject creates a project and appends the server-returned copy to
// the cached list. There is no speculative insert; the id is
// server-assigned.
func (c *Cache) CreateProject(ctx context.Context, name, description string) (models.Project, error) {
	var project models.Project
	body := map[string]string{"name": name, "description": description}
	if err := c.api.Do(ctx, http.MethodPost, "/projects/", body, &project); err != nil {
		return project, err
	}

	c.mu.Lock()
	c.projects = append(c.projects, project)
	c.mu.Unlock()

	c.log.Infow("project created", "project_id", project.ID, "name", project.Name)
	return project, nil
}

// AddMember adds a user to a project, then re-fetches the full project list
// to guarantee membership consistency.
func (c *Cache) AddMember(ctx context.Context, projectID, userID int64) error {
	endpoint := fmt.Sprintf("/projects/%d/add_member/", projectID)
	if err := c.api.Do(ctx, http.MethodPost, endpoint, map[string]int64{"user_id": userID}, nil); err != nil {
		return err
	}
	return c.refreshProjects(ctx)
}

// RemoveMember removes a user from a project, then re-fetches the full
// project list. The project owner is never removable; that case fails
// before any network call.
func (c *Cache) RemoveMember(ctx context.Context, projectID, userID int64) error {
	if p, ok := c.Project(projectID); ok && p.Owner.ID == userID {
		return ErrOwnerImmutable
	}

	endpoint := fmt.Sprintf("/projects/%d/remove_member/", projectID)
	if err := c.api.Do(ctx, http.MethodPost, endpoint, map[string]int64{"user_id": userID}, nil); err != nil {
		return err
	}
	return c.refreshProjects(ctx)
}

// refreshProjects replaces the cached project list with the server's
// current copy.
func (c *Cache) refreshProjects(ctx context.Context) error {
	var projects []models.Project
	if err := c.api.Do(ctx, http.MethodGet, "/projects/", nil, &projects); err != nil {
		return err
	}

	c.mu.Lock()
	c.projects = projects
	c.mu.Unlock()
	return nil
}

// SearchUsers is a pass-through server search, never cached. Query length
// thresholds and member exclusion are the caller's concern.
func (c *Cache) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	var users []models.User
	endpoint := "/users/?search=" + url.QueryEscape(query)
	if err := c.api.Do(ctx, http.MethodGet, endpoint, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// TaskDetails fetches a task fresh; the detail payload carries fields the
// list views omit.
func (c *Cache) TaskDetails(ctx context.Context, projectID, taskID int64) (models.Task, error) {
	var task models.Task
	endpoint := fmt.Sprintf("/projects/%d/tasks/%d/", projectID, taskID)
	if err := c.api.Do(ctx, http.MethodGet, endpoint, nil, &task); err != nil {
		return task, err
	}
	return task, nil
}

// Comments returns a task's comments in creation order.
func (c *Cache) Comments(ctx context.Context, projectID, taskID int64) ([]models.Comment, error) {
	var comments []models.Comment
	endpoint := fmt.Sprintf("/projects/%d/tasks/%d/comments/", projectID, taskID)
	if err := c.api.Do(ctx, http.MethodGet, endpoint, nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// PostComment posts a comment and returns the server's copy. Callers
// re-fetch the comment list afterwards so the server-assigned id and
// timestamp stay authoritative.
func (c *Cache) PostComment(ctx context.Context, projectID, taskID int64, body string) (models.Comment, error) {
	var comment models.Comment
	endpoint := fmt.Sprintf("/projects/%d/tasks/%d/comments/", projectID, taskID)
	if err := c.api.Do(ctx, http.MethodPost, endpoint, map[string]string{"body": body}, &comment); err != nil {
		return comment, err
	}
	return comment, nil
}

// TaskFields holds the writable fields for task creation.
type TaskFields struct {
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Status      models.Status   `json:"status,omitempty"`
	Priority    models.Priority `json:"priority,omitempty"`
	DueDate     *models.Date    `json:"due_date,omitempty"`
	AssigneeID  *int64          `json:"assignee_id,omitempty"`
}

// CreateTask creates a task in a project and drops the project's task memo
// so the next read sees it.
func (c *Cache) CreateTask(ctx context.Context, projectID int64, fields TaskFields) (models.Task, error) {
	var task models.Task
	endpoint := fmt.Sprintf("/projects/%d/tasks/", projectID)
	if err := c.api.Do(ctx, http.MethodPost, endpoint, fields, &task); err != nil {
		return task, err
	}

	c.InvalidateTasks(projectID)
	return task, nil
}

// UpdateTaskStatus patches a task's status, drops the project's task memo,
// and mirrors the confirmed status into the assigned-task list.
func (c *Cache) UpdateTaskStatus(ctx context.Context, projectID, taskID int64, status models.Status) error {
	endpoint := fmt.Sprintf("/projects/%d/tasks/%d/", projectID, taskID)
	if err := c.api.Do(ctx, http.MethodPatch, endpoint, map[string]models.Status{"status": status}, nil); err != nil {
		return err
	}

	c.mu.Lock()
	delete(c.projectTasks, projectID)
	for i := range c.myTasks {
		if c.myTasks[i].ID == taskID {
			c.myTasks[i].Status = status
		}
	}
	c.mu.Unlock()
	return nil
}
