package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/chatandika/wa-automation-be/internal/core/flow"
	"github.com/chatandika/wa-automation-be/internal/modules/inbox/models"
	"github.com/chatandika/wa-automation-be/internal/modules/inbox/repositories"
)

// ChatbotService is CRUD over chatbots with graph validation on every
// write, so broken references surface in the builder instead of in a
// live conversation.
type ChatbotService struct {
	repo repositories.ChatbotRepo
}

func NewChatbotService(repo repositories.ChatbotRepo) *ChatbotService {
	return &ChatbotService{repo: repo}
}

func (s *ChatbotService) List(workspaceID uuid.UUID) ([]models.Chatbot, error) {
	return s.repo.ListByWorkspace(workspaceID)
}

func (s *ChatbotService) Get(id uuid.UUID) (*models.Chatbot, error) {
	return s.repo.GetByID(id)
}

func (s *ChatbotService) Create(bot *models.Chatbot) error {
	if err := s.validateGraph(bot); err != nil {
		return err
	}
	return s.repo.Create(bot)
}

func (s *ChatbotService) Update(bot *models.Chatbot) error {
	if err := s.validateGraph(bot); err != nil {
		return err
	}
	return s.repo.Update(bot)
}

func (s *ChatbotService) Delete(id uuid.UUID) error {
	return s.repo.Delete(id)
}

func (s *ChatbotService) validateGraph(bot *models.Chatbot) error {
	if len(bot.Graph) == 0 {
		return fmt.Errorf("chatbot graph is required")
	}
	graph, err := flow.ParseGraph(bot.Graph)
	if err != nil {
		return err
	}
	return graph.Validate()
}
