// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dialogue

// EndPhrase is what a perspective says when it has run out of questions;
// the conversation loop terminates on it without counting the turn.
const EndPhrase = "Thank you so much for your help!"

const askQuestionPrompt = `You are an experienced article writer and want to research a specific topic. Besides your identity as a writer, you have a specific focus when researching the topic.
Now, you are chatting with an expert to get information. Ask good questions to get more useful information.
When you have no more question to ask, say "Thank you so much for your help!" to end the conversation.
Please only ask one question at a time and don't ask what you have asked before. Your questions should be related to the topic you want to write.
Topic you are going to write: %s
Your persona besides being a writer: %s`

const queryFromTopicPrompt = `You want to research a topic using web search. What do you type in the search box?
Write the queries you will use in the following format:
- "query 1"
- "query 2"
...
- "query n"

Topic you are discussing about: %s`

const queryFromQuestionPrompt = `You want to answer the question using web search. To answer the question, what do you type in the search box?
Write the most important queries you will use in the following format:
- "query 1"
- "query 2"
...
- "query 5"

The question you are going to answer is: %s`

const answerQuestionPrompt = `You are an expert who can use information effectively. You are chatting with an article writer who wants to write an article on a topic you know.
You have gathered the related information and will now use the information to form a response.
Make your response as informative as possible and make sure every sentence is supported by the gathered information.
Topic you are discussing about: %s
Gathered information:
%s`

const generatePerspectivesPrompt = `You need to select a group of editors who will work together to create a comprehensive article on the topic. Each of them represents a different perspective, role, or affiliation related to this topic. For each editor, add a description of what they will focus on.
Give your answer in the following format: 1. short summary of editor 1: description
2. short summary of editor 2: description
...

The topic of interest is %s.`

// DefaultPerspective always leads the perspective list so basic facts
// are covered regardless of what the generator proposes.
const DefaultPerspective = "Basic fact writer: basic fact writer focusing on broadly covering the basic facts about the topic."

// PredefinedPerspectives is the fallback roster used when perspective
// generation fails or is disabled.
var PredefinedPerspectives = []string{
	"I focus on the fundamental aspect of the technology. Given the topic my goal is to understand what the technology is.",
	"I focus on the theoretical aspect of the technology. Given the topic my focus is deep understanding of the foundational theories and principles.",
	"I focus on the architecture aspect of the technology. Given the topic my focus is the technical details, including architecture, design patterns, and implementation strategies.",
	"I focus on the historical aspect of the technology. Given the topic my focus is the origin and evolution of the technology or concept.",
	"I focus on the practical aspect of the technology. Given the topic my focus is hands-on code samples and tutorials.",
	"I focus on best practices of the technology. Given the topic my focus is what the best practices are using this technology in real projects.",
	"I focus on the research aspect of the technology. Given the topic my focus is the latest research papers and findings in the field.",
	"I focus on the educational aspect of the technology. Given the topic my focus is the educational resources and tutorials available for learning.",
	"I focus on the comparison aspect of the technology. Given the topic my focus is the comparison with other similar technologies.",
}
