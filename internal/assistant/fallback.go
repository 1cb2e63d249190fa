// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package assistant

import "strings"

// rule pairs a lowercase keyword with its canned response. Rules are
// evaluated in declared order and the first substring match wins, so more
// specific keywords must be declared before general ones ("ai automation"
// before "hi", which it contains).
type rule struct {
	keyword  string
	response string
}

// Responder answers deterministically when no AI provider is reachable.
type Responder struct {
	rules   []rule
	generic string
}

// NewResponder builds the responder with the site's canned answer table.
func NewResponder() *Responder {
	return &Responder{
		rules: []rule{
			{
				keyword:  "ai automation",
				response: "Steve specializes in AI automation that saves businesses 20+ hours per week! This includes custom chatbots, workflow automation, and AI-powered content generation. Would you like to upgrade to a video call to discuss your specific needs?",
			},
			{
				keyword:  "services",
				response: "Stephen offers 5 core services:\n\n- AI Automation\n- Web Development\n- Business Systems\n- Consulting\n- Training\n\nEach is tailored to help businesses scale efficiently. Which interests you most?",
			},
			{
				keyword:  "consultation",
				response: "Great choice! You can book a free 30-minute discovery call with Steve at https://cal.com/stevetotibooking/discovery-call-toti\n\nOr upgrade to a video call right here to chat face-to-face!",
			},
			{
				keyword:  "portfolio",
				response: "Stephen has delivered 100+ projects across 15+ countries! Some highlights:\n\n- Trade Farm - AI agricultural platform ($2M+ transactions)\n- Pacific Resort Group - 40% booking increase\n- Healthcare Simulation - 2,000+ medical students\n\nWant to discuss a similar project?",
			},
			{
				keyword:  "book",
				response: "You can book a free discovery call at https://cal.com/stevetotibooking/discovery-call-toti\n\nOr tap 'Upgrade to Video Call' above for an instant face-to-face chat!",
			},
			{
				keyword:  "video",
				response: "Great idea! Tap the 'Upgrade to Video Call' button to start a face-to-face conversation. I'll need just a few details first.",
			},
			{
				keyword:  "hello",
				response: "Hi there! I'm Toti, Steve's AI assistant. I can help you learn about AI automation, web development, and other services. What brings you here today?",
			},
			{
				keyword:  "hi",
				response: "Hello! I'm Toti. I can help you explore Stephen's services or book a discovery call. What would you like to know?",
			},
			{
				keyword:  "price",
				response: "Pricing varies by project scope. Most engagements start with a free discovery call to understand your needs. Would you like to book one?",
			},
			{
				keyword:  "cost",
				response: "Investment depends on the project complexity. A free discovery call is the best way to get an accurate estimate. Want to schedule one?",
			},
		},
		generic: "Thanks for your message! I'd love to help you learn more about how Stephen can help your business. You can:\n\n- Ask about specific services (AI automation, web development, etc.)\n- Book a discovery call at cal.com/stevetotibooking\n- Upgrade to video call for a face-to-face chat\n\nWhat would you like to explore?",
	}
}

// Respond matches the lowercased message against the rule table, first
// match wins. Unmatched messages get the generic next-actions response.
func (r *Responder) Respond(userMessage string) string {
	lower := strings.ToLower(userMessage)
	for _, rule := range r.rules {
		if strings.Contains(lower, rule.keyword) {
			return rule.response
		}
	}
	return r.generic
}
