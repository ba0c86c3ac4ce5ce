package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"taskgrid.org/internal/client"
)

func main() {
	baseURL := os.Getenv("TASKGRID_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c := client.New(baseURL)
	email := fmt.Sprintf("smoke-%d@taskgrid.test", rand.Int())
	orgName := fmt.Sprintf("Smoke Org %d", rand.Int())

	session, err := c.Register(ctx, email, "smoke-password-1", orgName)
	if err != nil {
		log.Fatalf("register: %v", err)
	}
	if session.User.Role != "owner" {
		log.Fatalf("first account role = %s, want owner", session.User.Role)
	}

	created, err := c.CreateTask(ctx, client.TaskInput{
		Title:    "Smoke check",
		Category: "Work",
	})
	if err != nil {
		log.Fatalf("create task: %v", err)
	}

	tasks, err := c.ListTasks(ctx)
	if err != nil {
		log.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != created.ID {
		log.Fatalf("unexpected task list: %+v", tasks)
	}

	status := "done"
	if _, err := c.UpdateTask(ctx, created.ID, client.TaskPatch{Status: &status}); err != nil {
		log.Fatalf("update task: %v", err)
	}

	entries, err := c.AuditLog(ctx, "", created.ID)
	if err != nil {
		log.Fatalf("audit log: %v", err)
	}
	if len(entries) < 3 {
		log.Fatalf("audit trail too short: %d entries", len(entries))
	}

	if err := c.DeleteTask(ctx, created.ID); err != nil {
		log.Fatalf("delete task: %v", err)
	}

	fmt.Printf("smoke test passed: task=%s audit_entries=%d\n", created.ID, len(entries))
}
