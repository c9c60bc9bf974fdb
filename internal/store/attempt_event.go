package store

import (
	"context"
	"fmt"
	"time"
)

// AppendQuizAttempt records a completed quiz.
func (r *EventRepo) AppendQuizAttempt(ctx context.Context, data QuizAttemptData) error {
	if data.ID == "" {
		return fmt.Errorf("quiz attempt id is required")
	}
	completed := data.CompletedAt
	if completed.IsZero() {
		completed = time.Now()
	}

	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO quiz_attempts
		(id, sequence, user_id, topic, difficulty, certificate_level, total_questions,
		 correct_answers, score, passed, duration_ms, completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		data.ID, seqNum, data.UserID, data.Topic, data.Difficulty, data.CertificateLevel,
		data.TotalQuestions, data.CorrectAnswers, data.Score, data.Passed,
		data.Duration.Milliseconds(), completed.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save quiz attempt: %w", err)
	}
	return nil
}

// QueryQuizAttempts returns a user's attempts newest first. An empty user
// matches everyone.
func (r *EventRepo) QueryQuizAttempts(ctx context.Context, userID string, opts QueryOpts) ([]QuizAttemptRecord, error) {
	f := opts.filter("completed_at")
	if userID != "" {
		f.add("user_id = $%d", userID)
	}
	q := `SELECT id, sequence, user_id, topic, difficulty, certificate_level, total_questions,
		correct_answers, score, passed, duration_ms, completed_at
		FROM quiz_attempts` + f.where() + ` ORDER BY sequence DESC` + f.limit(opts.Limit)

	rows, err := r.db.QueryContext(ctx, q, f.args...)
	if err != nil {
		return nil, fmt.Errorf("query quiz attempts: %w", err)
	}
	defer rows.Close()

	var out []QuizAttemptRecord
	for rows.Next() {
		var (
			rec           QuizAttemptRecord
			durMs, doneMs int64
		)
		if err := rows.Scan(&rec.ID, &rec.Sequence, &rec.UserID, &rec.Topic, &rec.Difficulty,
			&rec.CertificateLevel, &rec.TotalQuestions, &rec.CorrectAnswers, &rec.Score,
			&rec.Passed, &durMs, &doneMs); err != nil {
			return nil, fmt.Errorf("scan quiz attempt: %w", err)
		}
		rec.Duration = time.Duration(durMs) * time.Millisecond
		rec.CompletedAt = time.UnixMilli(doneMs)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DeleteQuizAttempts removes every attempt of a user and reports how many
// rows went away.
func (r *EventRepo) DeleteQuizAttempts(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM quiz_attempts WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete quiz attempts: %w", err)
	}
	return res.RowsAffected()
}
