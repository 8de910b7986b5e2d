package catalog

import "github.com/celprep/practice-service/internal/models"

// Default builds the catalog compiled into the binary. Content mirrors the
// structure of the CELPIP exam: Listening and Reading are multiple choice,
// Writing and Speaking are timed free-response tasks.
func Default() (*Catalog, error) {
	return New(listeningSection(), readingSection(), writingSection(), speakingSection())
}

func strPtr(s string) *string { return &s }

func listeningSection() models.Section {
	return models.Section{
		Kind:  models.SectionListening,
		Title: "Listening",
		Parts: []models.ContentPart{
			{
				ID:       "listening-p1",
				Title:    "Part 1: Listening to Problem Solving",
				MediaURL: strPtr("/audio/listening-part1.mp3"),
				Questions: []models.Question{
					{
						ID:           "listening-p1-q1",
						Prompt:       "Why is the customer calling the service centre?",
						Options:      []string{"To cancel an appointment", "To report a billing error", "To ask about store hours", "To return a product"},
						CorrectIndex: 1,
						Explanation:  strPtr("The caller mentions an unexpected charge on her monthly statement."),
					},
					{
						ID:           "listening-p1-q2",
						Prompt:       "What does the agent offer to do first?",
						Options:      []string{"Transfer the call", "Issue a refund", "Review the account history", "Schedule a callback"},
						CorrectIndex: 2,
					},
					{
						ID:           "listening-p1-q3",
						Prompt:       "How does the conversation end?",
						Options:      []string{"The customer asks for a manager", "The charge is reversed", "The customer hangs up", "A follow-up email is promised"},
						CorrectIndex: 3,
					},
				},
			},
			{
				ID:       "listening-p2",
				Title:    "Part 2: Listening to a Daily Life Conversation",
				MediaURL: strPtr("/audio/listening-part2.mp3"),
				Questions: []models.Question{
					{
						ID:           "listening-p2-q1",
						Prompt:       "Where are the two speakers planning to meet?",
						Options:      []string{"At the library", "At the community centre", "At a café", "At the train station"},
						CorrectIndex: 2,
					},
					{
						ID:           "listening-p2-q2",
						Prompt:       "Why does the woman suggest changing the time?",
						Options:      []string{"She has a dentist appointment", "Her shift was extended", "The venue closes early", "She is expecting a delivery"},
						CorrectIndex: 1,
					},
					{
						ID:           "listening-p2-q3",
						Prompt:       "What will the man bring with him?",
						Options:      []string{"His laptop", "The concert tickets", "A borrowed book", "The rental agreement"},
						CorrectIndex: 3,
					},
				},
			},
			{
				ID:       "listening-p3",
				Title:    "Part 3: Listening for Information",
				MediaURL: strPtr("/audio/listening-part3.mp3"),
				Questions: []models.Question{
					{
						ID:           "listening-p3-q1",
						Prompt:       "What is the main topic of the news report?",
						Options:      []string{"A new bicycle-lane network", "Rising grocery prices", "A library renovation", "Changes to transit fares"},
						CorrectIndex: 0,
					},
					{
						ID:           "listening-p3-q2",
						Prompt:       "When is the construction expected to finish?",
						Options:      []string{"Next month", "By the end of summer", "In two years", "The report does not say"},
						CorrectIndex: 1,
					},
					{
						ID:           "listening-p3-q3",
						Prompt:       "How did local businesses respond?",
						Options:      []string{"They organized a protest", "They requested compensation", "Most supported the plan", "They were not consulted"},
						CorrectIndex: 2,
					},
				},
			},
		},
	}
}

func readingSection() models.Section {
	return models.Section{
		Kind:        models.SectionReading,
		Title:       "Reading",
		TimeLimit:   38 * 60,
		TimeWarning: 5 * 60,
		Parts: []models.ContentPart{
			{
				ID:        "reading-p1",
				Title:     "Part 1: Reading Correspondence",
				TimeLimit: 11 * 60,
				Questions: []models.Question{
					{
						ID:           "reading-p1-q1",
						Prompt:       "Why did Amira write this letter to her landlord?",
						Options:      []string{"To give notice of moving out", "To request a repair", "To dispute a rent increase", "To ask about subletting"},
						CorrectIndex: 1,
					},
					{
						ID:           "reading-p1-q2",
						Prompt:       "According to the letter, when did the problem begin?",
						Options:      []string{"Last week", "After the spring storm", "When the heating was serviced", "Two months ago"},
						CorrectIndex: 3,
					},
					{
						ID:           "reading-p1-q3",
						Prompt:       "What does Amira ask the landlord to do?",
						Options:      []string{"Reduce the rent", "Send a plumber this week", "Replace the appliance", "Call her employer"},
						CorrectIndex: 1,
					},
				},
			},
			{
				ID:        "reading-p2",
				Title:     "Part 2: Reading to Apply a Diagram",
				TimeLimit: 9 * 60,
				Questions: []models.Question{
					{
						ID:           "reading-p2-q1",
						Prompt:       "Which membership option includes weekend access?",
						Options:      []string{"Basic", "Standard", "Plus", "Corporate"},
						CorrectIndex: 2,
					},
					{
						ID:           "reading-p2-q2",
						Prompt:       "What is included with every membership level?",
						Options:      []string{"Guest passes", "Locker rental", "A fitness assessment", "Towel service"},
						CorrectIndex: 2,
					},
				},
			},
			{
				ID:        "reading-p3",
				Title:     "Part 3: Reading for Information",
				TimeLimit: 10 * 60,
				Questions: []models.Question{
					{
						ID:           "reading-p3-q1",
						Prompt:       "Which paragraph discusses the program's funding?",
						Options:      []string{"Paragraph A", "Paragraph B", "Paragraph C", "Paragraph D"},
						CorrectIndex: 1,
					},
					{
						ID:           "reading-p3-q2",
						Prompt:       "Which paragraph describes who may enrol?",
						Options:      []string{"Paragraph A", "Paragraph B", "Paragraph C", "Paragraph D"},
						CorrectIndex: 3,
					},
				},
			},
		},
	}
}

func writingSection() models.Section {
	return models.Section{
		Kind:        models.SectionWriting,
		Title:       "Writing",
		TimeLimit:   53 * 60,
		TimeWarning: 5 * 60,
		Parts: []models.ContentPart{
			{
				ID:    "writing-t1",
				Title: "Task 1: Writing an Email",
				Task: &models.Task{
					ID:           "writing-t1-task",
					Prompt:       "You recently moved to a new city for work. Write an email to your former neighbour describing your new neighbourhood and inviting them to visit.",
					Instructions: "Write 150-200 words. Address all three points in the prompt.",
					ResponseTime: 27 * 60,
					WordCountMin: 150,
					WordCountMax: 200,
					MaxScore:     6,
				},
			},
			{
				ID:    "writing-t2",
				Title: "Task 2: Responding to Survey Questions",
				Task: &models.Task{
					ID:           "writing-t2-task",
					Prompt:       "Your city is considering converting a downtown parking lot into a public park. Choose the option you prefer and explain your reasons.",
					Instructions: "Write 150-200 words. Support your opinion with specific reasons.",
					ResponseTime: 26 * 60,
					WordCountMin: 150,
					WordCountMax: 200,
					MaxScore:     6,
				},
			},
		},
	}
}

func speakingSection() models.Section {
	return models.Section{
		Kind:  models.SectionSpeaking,
		Title: "Speaking",
		Parts: []models.ContentPart{
			{
				ID:    "speaking-t1",
				Title: "Task 1: Giving Advice",
				Task: &models.Task{
					ID:           "speaking-t1-task",
					Prompt:       "A friend is deciding whether to buy a car or continue using public transit. Give your friend some advice.",
					PrepTime:     30,
					ResponseTime: 90,
				},
			},
			{
				ID:    "speaking-t2",
				Title: "Task 2: Talking about a Personal Experience",
				Task: &models.Task{
					ID:           "speaking-t2-task",
					Prompt:       "Talk about a memorable celebration you attended. What made it memorable?",
					PrepTime:     30,
					ResponseTime: 60,
				},
			},
			{
				ID:    "speaking-t3",
				Title: "Task 3: Describing a Scene",
				Task: &models.Task{
					ID:           "speaking-t3-task",
					Prompt:       "Describe what is happening in the picture to someone who cannot see it.",
					PrepTime:     30,
					ResponseTime: 60,
				},
			},
		},
	}
}
