package testutil

import (
	"fmt"

	"chatbot/model"
)

// TestMessages returns a sample conversation for testing
func TestMessages() []model.Message {
	return []model.Message{
		{Role: model.RoleUser, Content: "Hello, how are you?"},
		{Role: model.RoleAssistant, Content: "I'm doing well, thank you!"},
		{Role: model.RoleUser, Content: "Can you help me with a task?"},
	}
}

// SingleUserMessage returns a single user message for simple tests
func SingleUserMessage(content string) []model.Message {
	return []model.Message{
		{Role: model.RoleUser, Content: content},
	}
}

// Conversation returns n alternating user/assistant turns, user first.
func Conversation(n int) []model.Message {
	msgs := make([]model.Message, n)
	for i := range msgs {
		if i%2 == 0 {
			msgs[i] = model.NewMessage(model.RoleUser, fmt.Sprintf("question %d", i/2+1))
		} else {
			msgs[i] = model.NewMessage(model.RoleAssistant, fmt.Sprintf("answer %d", i/2+1))
		}
	}
	return msgs
}

// EmptyMessages returns an empty message slice for edge case testing
func EmptyMessages() []model.Message {
	return []model.Message{}
}

// SystemMessage returns a system message for testing
func SystemMessage(content string) model.Message {
	return model.NewMessage(model.RoleSystem, content)
}
