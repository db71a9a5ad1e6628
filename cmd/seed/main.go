package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"assignportal/internal/database"
	"assignportal/internal/domain"
	"assignportal/internal/repository"
	"assignportal/internal/storage"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	_ = godotenv.Load()
	ctx := context.Background()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "portal.db"
	}
	uploadRoot := os.Getenv("UPLOAD_ROOT")
	if uploadRoot == "" {
		uploadRoot = "./uploads"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}
	log.Println("Running AutoMigrate...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}
	store, err := storage.NewLocal(uploadRoot)
	if err != nil {
		log.Fatal("storage:", err)
	}

	// Cleanup old data (children first)
	log.Println("Cleaning old data...")
	for _, table := range []string{"files", "submissions", "assignments", "class_students", "course_classes", "classes", "courses", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.Fatalf("cleanup %s: %v", table, err)
		}
	}

	users := repository.NewUserRepository(db)
	classes := repository.NewClassRepository(db)
	courses := repository.NewCourseRepository(db)
	assignments := repository.NewAssignmentRepository(db)
	submissions := repository.NewSubmissionRepository(db)

	// ================== USERS ==================
	log.Println("Creating users...")
	mustUser := func(username, password string, role domain.UserRole, org string) domain.User {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal(err)
		}
		u := domain.User{Username: username, PasswordHash: string(hash), Role: role, Organization: org, FirstLogin: role != domain.RoleAdmin}
		if err := users.Create(ctx, &u); err != nil {
			log.Fatalf("create user %s: %v", username, err)
		}
		return u
	}

	mustUser(domain.AdminUsername, "admin123", domain.RoleAdmin, "")
	log.Println("Admin created: admin / admin123")

	teachers := []domain.User{
		mustUser("t.ivanova", "teacher123", domain.RoleTeacher, "Computer Science"),
		mustUser("t.chen", "teacher123", domain.RoleTeacher, "Software Engineering"),
	}
	students := make([]domain.User, 0, 8)
	for i := 1; i <= 8; i++ {
		students = append(students, mustUser(fmt.Sprintf("student%d", i), "student123", domain.RoleStudent, "Class of 2027"))
	}

	// ================== COURSES & CLASSES ==================
	log.Println("Creating courses and classes...")
	type plan struct {
		course string
		code   string
		class  string
	}
	plans := [][]plan{
		{{"Databases", "CS204", "CS-2A"}, {"Operating Systems", "CS301", "CS-3A"}},
		{{"Software Testing", "SE210", "SE-2B"}},
	}

	now := time.Now()
	var firstAssignment domain.Assignment
	for ti, teacher := range teachers {
		for pi, p := range plans[ti] {
			c := domain.Course{Name: p.course, Code: p.code, Semester: "2026-autumn", TeacherID: teacher.ID}
			if err := courses.Create(ctx, &c); err != nil {
				log.Fatal(err)
			}
			cl := domain.Class{Name: p.class, TeacherID: teacher.ID}
			if err := classes.Create(ctx, &cl, []int64{c.ID}); err != nil {
				log.Fatal(err)
			}
			for si, s := range students {
				if (si+pi+ti)%2 == 0 || si < 3 {
					if err := classes.AddStudent(ctx, cl.ID, s.ID); err != nil {
						log.Fatal(err)
					}
				}
			}

			// ================== ASSIGNMENTS ==================
			for k, days := range []int{-3, 7, 14} {
				a := domain.Assignment{
					Title:            fmt.Sprintf("%s Lab %d", p.code, k+1),
					Description:      "Submit your report and source archive.",
					ClassID:          cl.ID,
					CourseID:         c.ID,
					TeacherID:        teacher.ID,
					DueDate:          now.AddDate(0, 0, days),
					AllowedFileTypes: ".pdf,.docx,.zip",
					MaxFileSize:      10,
				}
				if err := assignments.Create(ctx, &a); err != nil {
					log.Fatal(err)
				}
				if firstAssignment.ID == 0 && days > 0 {
					firstAssignment = a
				}
			}
		}
	}

	// ================== SUBMISSIONS ==================
	log.Println("Creating submissions...")
	for _, s := range students[:3] {
		name := fmt.Sprintf("%s_report.pdf", s.Username)
		rel, size, err := store.Save(s.ID, name, strings.NewReader("%PDF-1.4\n% demo submission\n"))
		if err != nil {
			log.Fatal(err)
		}
		_, _, err = submissions.ReplaceFiles(ctx, firstAssignment.ID, s.ID, []domain.StoredFile{
			{Filename: name, Filepath: rel, Filesize: size, Filetype: "application/pdf"},
		}, now)
		if err != nil {
			log.Fatal(err)
		}
	}

	log.Printf("Seed completed: teachers=%d students=%d (passwords teacher123 / student123)", len(teachers), len(students))
}
