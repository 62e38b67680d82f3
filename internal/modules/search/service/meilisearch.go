package service

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"anoa.com/pocmarket/internal/entity"
	"github.com/meilisearch/meilisearch-go"
)

// MeiliService keeps the search indexes in sync with the database and issues
// tenant tokens so clients can query Meilisearch directly.
type MeiliService interface {
	IndexProject(project *entity.Project) error
	DeleteProject(id string) error
	IndexUser(user *entity.User) error
	IndexBlog(post *entity.BlogPost) error
	DeleteBlog(id string) error
	GenerateSearchToken(userRole string) (string, error)
}

type meiliService struct {
	client        meilisearch.ServiceManager
	signingKeyUID string
	signingKey    string
}

func NewMeiliService(client meilisearch.ServiceManager, masterKey string) MeiliService {
	if masterKey == "" {
		log.Println("WARNING: MEILI_MASTER_KEY is not set.")
	}

	s := &meiliService{client: client}
	s.initIndexes()
	s.initSigningKey()
	return s
}

func (s *meiliService) initIndexes() {
	projectFilterable := []any{"status", "required_skills", "budget"}
	if _, err := s.client.Index("projects").UpdateFilterableAttributes(&projectFilterable); err != nil {
		log.Printf("Failed to update projects filterable attributes: %v", err)
	}
	projectSortable := []string{"created_at", "budget", "deadline"}
	if _, err := s.client.Index("projects").UpdateSortableAttributes(&projectSortable); err != nil {
		log.Printf("Failed to update projects sortable attributes: %v", err)
	}

	userFilterable := []any{"role", "is_profile_public", "skills", "industry"}
	if _, err := s.client.Index("users").UpdateFilterableAttributes(&userFilterable); err != nil {
		log.Printf("Failed to update users filterable attributes: %v", err)
	}

	blogFilterable := []any{"published", "author_id"}
	if _, err := s.client.Index("blogs").UpdateFilterableAttributes(&blogFilterable); err != nil {
		log.Printf("Failed to update blogs filterable attributes: %v", err)
	}
	blogSortable := []string{"created_at"}
	if _, err := s.client.Index("blogs").UpdateSortableAttributes(&blogSortable); err != nil {
		log.Printf("Failed to update blogs sortable attributes: %v", err)
	}

	log.Println("Meilisearch indexes initialized")
}

func (s *meiliService) initSigningKey() {
	resp, err := s.client.GetKeys(&meilisearch.KeysQuery{Limit: 20})
	if err != nil {
		log.Printf("Failed to get meilisearch keys: %v", err)
		return
	}

	for _, key := range resp.Results {
		if key.Name == "TenantTokenSigner" {
			s.signingKeyUID = key.UID
			s.signingKey = key.Key
			log.Println("Found existing Meilisearch signing key")
			return
		}
	}

	expiry := time.Now().AddDate(100, 0, 0)
	key, err := s.client.CreateKey(&meilisearch.Key{
		Description: "Key to sign tenant tokens",
		Name:        "TenantTokenSigner",
		Actions:     []string{"search"},
		Indexes:     []string{"projects", "users", "blogs"},
		ExpiresAt:   expiry,
	})
	if err != nil {
		log.Printf("Failed to create signing key: %v", err)
		return
	}

	s.signingKeyUID = key.UID
	s.signingKey = key.Key
	log.Println("Created new Meilisearch signing key")
}

type meiliProjectDoc struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Budget         int      `json:"budget"`
	Status         string   `json:"status"`
	RequiredSkills []string `json:"required_skills"`
	Deadline       int64    `json:"deadline"`
	CreatedAt      int64    `json:"created_at"`
	Owner          string   `json:"owner"`
}

type meiliUserDoc struct {
	ID              string   `json:"id"`
	DisplayName     string   `json:"display_name"`
	Role            string   `json:"role"`
	Bio             string   `json:"bio"`
	CompanyName     string   `json:"company_name"`
	Industry        string   `json:"industry"`
	Location        string   `json:"location"`
	Skills          []string `json:"skills"`
	IsProfilePublic bool     `json:"is_profile_public"`
}

type meiliBlogDoc struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	AuthorID  string `json:"author_id"`
	Published bool   `json:"published"`
	CreatedAt int64  `json:"created_at"`
}

func (s *meiliService) IndexProject(project *entity.Project) error {
	doc := meiliProjectDoc{
		ID:             project.ID.String(),
		Title:          project.Title,
		Description:    project.Description,
		Budget:         project.Budget,
		Status:         string(project.Status),
		RequiredSkills: jsonKeys(project.RequiredSkills),
		CreatedAt:      project.CreatedAt.Unix(),
		Owner:          project.User.DisplayName,
	}
	if project.Deadline != nil {
		doc.Deadline = project.Deadline.Unix()
	}

	_, err := s.client.Index("projects").AddDocuments([]meiliProjectDoc{doc}, strPtr("id"))
	return err
}

func (s *meiliService) DeleteProject(id string) error {
	_, err := s.client.Index("projects").DeleteDocument(id)
	return err
}

func (s *meiliService) IndexUser(user *entity.User) error {
	doc := meiliUserDoc{
		ID:              user.ID.String(),
		DisplayName:     user.DisplayName,
		Role:            string(user.Role),
		Bio:             stringOrEmpty(user.Bio),
		CompanyName:     stringOrEmpty(user.CompanyName),
		Industry:        stringOrEmpty(user.Industry),
		Location:        stringOrEmpty(user.Location),
		Skills:          jsonKeys(user.Skills),
		IsProfilePublic: user.IsProfilePublic,
	}

	_, err := s.client.Index("users").AddDocuments([]meiliUserDoc{doc}, strPtr("id"))
	return err
}

func (s *meiliService) IndexBlog(post *entity.BlogPost) error {
	doc := meiliBlogDoc{
		ID:        post.ID.String(),
		Title:     post.Title,
		Content:   post.Content,
		AuthorID:  post.AuthorID.String(),
		Published: post.Published,
		CreatedAt: post.CreatedAt.Unix(),
	}

	_, err := s.client.Index("blogs").AddDocuments([]meiliBlogDoc{doc}, strPtr("id"))
	return err
}

func (s *meiliService) DeleteBlog(id string) error {
	_, err := s.client.Index("blogs").DeleteDocument(id)
	return err
}

func (s *meiliService) GenerateSearchToken(userRole string) (string, error) {
	if s.signingKeyUID == "" || s.signingKey == "" {
		return "", fmt.Errorf("signing key not initialized")
	}

	searchRules := map[string]any{
		"projects": map[string]any{"filter": nil},
		"users":    map[string]any{"filter": "is_profile_public = true"},
		"blogs":    map[string]any{"filter": "published = true"},
	}

	// Admins see everything, including private profiles and drafts.
	if userRole == string(entity.RoleAdmin) {
		searchRules["users"] = map[string]any{"filter": nil}
		searchRules["blogs"] = map[string]any{"filter": nil}
	}

	token, err := s.client.GenerateTenantToken(s.signingKeyUID, searchRules, &meilisearch.TenantTokenOptions{
		APIKey:    s.signingKey,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		return "", err
	}

	return token, nil
}

// jsonKeys extracts the keys from a JSON object column (skill name -> level).
func jsonKeys(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtr(s string) *string {
	return &s
}
