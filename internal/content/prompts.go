package content

// searchPromptTemplate drives the Gemini search stage. The schema and the
// relevance rules are what the response extractor and normalizer are tuned
// against; change them together.
const searchPromptTemplate = `You are a sports news curator. Find 7-10 recent news items for someone who follows:
%s

Today is %s. Only include content from the PAST %d DAYS.

## CRITICAL RELEVANCE RULES
Each item MUST be DIRECTLY about one of the listed interests:
- If the interest is "Dallas Cowboys" -> article must be primarily about the Cowboys
- If the interest is "Patrick Mahomes" -> article must feature Mahomes as a main subject
- Do NOT include items where the interest is only briefly mentioned
- Do NOT include general league news unless it directly impacts an interest

## Content Types to Search For
- Breaking news and analysis articles from any sports publication
- Social media posts from players, teams, coaches, or reporters covering these interests
- Video highlights, interviews, or press conferences
- Reddit discussions in team/player subreddits

## For Each Item Provide
- headline: Compelling title
- summary: 2-3 sentence summary
- source_type: "article" | "tweet" | "video" | "reddit"
- source_name: Publication or account name
- url: Direct link
- relevance: Which interest this relates to AND why it matters
- published_at: ISO datetime
- thumbnail_url: Image URL if available
- author_handle: @username for social posts (tweets)

Return ONLY a valid JSON array. No markdown, no explanation.`

// verifyPromptTemplate drives the Gemini verification stage. Items scoring
// below 7 are rejected.
const verifyPromptTemplate = `You are a relevance verification agent. Review these news items for a user who follows:
%s

## Your Task
For each item, determine if it is DIRECTLY relevant to the user's interests.

## Scoring Criteria (1-10)
- 10: Article is entirely about one of their interests (e.g., "Cowboys sign new QB")
- 7-9: Interest is a primary subject of the article
- 4-6: Interest is mentioned but not the main focus
- 1-3: Interest is barely mentioned or tangentially related

## Rules
- REJECT (score < 7) items where the interest is only briefly mentioned
- REJECT generic league news that doesn't specifically feature their interests
- KEEP items that would genuinely excite a fan of that specific team/player

## Input Items
%s

## Output
Return a JSON object with ONLY the items scoring 7+, adding a "relevance_score" field to each.
If fewer than 3 items pass, note this in a "quality_warning" field.

Return ONLY valid JSON. Format:
{
  "verified_items": [...],
  "rejected_count": N,
  "quality_warning": "optional message if < 3 items passed"
}`

// perplexityPromptTemplate drives the single-stage Perplexity search. The
// freshness window is enforced by prompt only; the provider performs no
// independent date filtering.
const perplexityPromptTemplate = `You are a sports news curator. The user follows these teams/players:
%s

Find the most important and interesting sports news from the past week related to these interests.
Look for content from news articles, social media, YouTube, and Reddit.

Select the TOP 5-7 stories and return them as a JSON array. Each item should have:
- headline: A compelling headline
- summary: 2-3 sentence summary
- source_type: "article" | "tweet" | "video" | "reddit"
- source_name: The publication or account name
- url: Direct link to the content
- relevance: One sentence on why this matters to this fan
- published_at: ISO datetime if known, null if unknown
- thumbnail_url: Image URL if available, null otherwise

Return ONLY valid JSON as an array. No other text or explanation.`
